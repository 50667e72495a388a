package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"estately-server/models"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSearchTestApp() *iris.Application {
	app := iris.New()
	app.Validator = validator.New()
	app.Post("/api/property/search", GetPropertiesByBoundingBox)
	app.Build()
	return app
}

func TestBoundingBoxInvertedBounds(t *testing.T) {
	app := buildSearchTestApp()

	body := `{"latLow": 40.0, "latHigh": 39.0, "lngLow": -9.5, "lngHigh": -9.0}`
	req := httptest.NewRequest(http.MethodPost, "/api/property/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBoundingBoxOutOfRangeRejected(t *testing.T) {
	app := buildSearchTestApp()

	body := `{"latLow": -95.0, "latHigh": 40.0, "lngLow": -9.5, "lngHigh": -9.0}`
	req := httptest.NewRequest(http.MethodPost, "/api/property/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBoundingBoxEmptyResult(t *testing.T) {
	storage.DB = openRoutesTestDB(t)
	app := buildSearchTestApp()

	body := `{"latLow": 38.0, "latHigh": 39.0, "lngLow": -9.5, "lngHigh": -9.0}`
	req := httptest.NewRequest(http.MethodPost, "/api/property/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "[]", strings.TrimSpace(resp.Body.String()))
}

func TestBoundingBoxZeroCoordinateAccepted(t *testing.T) {
	storage.DB = openRoutesTestDB(t)
	app := buildSearchTestApp()

	lat, lng := 2.0, 3.0
	require.NoError(t, storage.DB.Create(&models.Property{
		AgentID: 1, Title: "Equator flat", City: "Quito", Country: "EC",
		Lat: &lat, Lng: &lng,
		Price:  decimal.NewFromInt(100000),
		Status: "active", ModerationStatus: "approved",
	}).Error)

	// Boxes touching the equator or prime meridian are valid searches.
	body := `{"latLow": 0, "latHigh": 5, "lngLow": 0, "lngHigh": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/property/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Equator flat")
}

// buildListingTestApp wires the authenticated listing routes the way
// main.go does.
func buildListingTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	property := app.Party("/api/property")
	{
		property.Post("/", accessTokenVerifierMiddleware, CreateProperty)
		property.Patch("/update/{id}", accessTokenVerifierMiddleware, UpdateProperty)
	}
	app.Get("/api/properties/search", SearchProperties)

	app.Build()
	return app
}

func TestSearchFeaturedParam(t *testing.T) {
	storage.DB = openRoutesTestDB(t)
	app := buildListingTestApp()

	require.NoError(t, storage.DB.Create(&models.Property{
		AgentID: 1, Title: "Plain listing", City: "Porto", Country: "PT",
		Price: decimal.NewFromInt(200000), Status: "active", ModerationStatus: "approved",
	}).Error)
	require.NoError(t, storage.DB.Create(&models.Property{
		AgentID: 1, Title: "Featured listing", City: "Porto", Country: "PT",
		Price: decimal.NewFromInt(300000), Status: "active", ModerationStatus: "approved",
		IsFeatured: true,
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/properties/search?featured=true", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var out struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "Featured listing", out.Data[0].Title)
}

func TestCreateListingOverTierQuota(t *testing.T) {
	storage.DB = openRoutesTestDB(t)
	app := buildListingTestApp()

	agent := models.User{Email: "free-agent@example.com", Tier: models.TierFree}
	require.NoError(t, storage.DB.Create(&agent).Error)
	require.NoError(t, storage.DB.Create(&models.Property{
		AgentID: agent.ID, Title: "Only listing", City: "Lisbon", Country: "PT",
		Price: decimal.NewFromInt(150000), Status: "active",
	}).Error)

	body := `{"title":"Second listing","listingType":"sale","propertyType":"house",` +
		`"addressLine1":"1 Main St","city":"Lisbon","country":"PT","price":"250000","currency":"EUR"}`
	req := httptest.NewRequest(http.MethodPost, "/api/property", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, agent.ID, "user"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	require.Equal(t, http.StatusPaymentRequired, resp.Code)

	var out struct {
		Limit string `json:"limit"`
		Max   int    `json:"max"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, "properties", out.Limit)
	assert.Equal(t, models.LimitsFor(models.TierFree).MaxProperties, out.Max)
}

func TestUpdateListingAreaFields(t *testing.T) {
	storage.DB = openRoutesTestDB(t)
	app := buildListingTestApp()

	agent := models.User{Email: "areas@example.com", Tier: models.TierPlus}
	require.NoError(t, storage.DB.Create(&agent).Error)
	listing := models.Property{
		AgentID: agent.ID, Title: "Townhouse", City: "Lisbon", Country: "PT",
		Price: decimal.NewFromInt(400000), Status: "active",
	}
	require.NoError(t, storage.DB.Create(&listing).Error)

	body := `{"title":"Townhouse","listingType":"sale","propertyType":"house",` +
		`"addressLine1":"1 Main St","city":"Lisbon","country":"PT","price":"400000","currency":"EUR",` +
		`"livingArea":"120.5","lotArea":"300"}`
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/property/update/%d", listing.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, agent.ID, "user"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	require.Equal(t, http.StatusNoContent, resp.Code)

	var updated models.Property
	require.NoError(t, storage.DB.First(&updated, listing.ID).Error)
	assert.True(t, updated.LivingArea.Equal(decimal.RequireFromString("120.5")))
	require.NotNil(t, updated.LotArea)
	assert.True(t, updated.LotArea.Equal(decimal.NewFromInt(300)))
}
