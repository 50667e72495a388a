package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"estately-server/models"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openRoutesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Property{}, &models.PropertyImage{},
		&models.PropertyVideo{}, &models.Appointment{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

// buildAdminTestApp wires the admin party the way main.go does.
func buildAdminTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", AdminListUsers)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, AdminChangeUserRole)
	}

	app.Build()
	return app
}

func signTestToken(t *testing.T, id uint, role string) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, err := signer.Sign(utils.AccessToken{ID: id, Role: role})
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return string(token)
}

func TestAdminUsersRBAC(t *testing.T) {
	storage.DB = openRoutesTestDB(t)
	app := buildAdminTestApp()

	// Missing token is rejected by the verifier.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}

	// Plain user role is rejected by AdminOnlyMiddleware.
	req2 := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req2.Header.Set("Authorization", "Bearer "+signTestToken(t, 1, "user"))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", resp2.Code)
	}

	// Admin role passes through to the handler.
	req3 := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req3.Header.Set("Authorization", "Bearer "+signTestToken(t, 1, "admin"))
	resp3 := httptest.NewRecorder()
	app.ServeHTTP(resp3, req3)
	if resp3.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d", resp3.Code)
	}
}

func TestAdminRoleChangeRequiresSuperAdmin(t *testing.T) {
	storage.DB = openRoutesTestDB(t)
	app := buildAdminTestApp()

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/1/role", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 1, "admin"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on role change, got %d", resp.Code)
	}
}
