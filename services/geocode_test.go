package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutocompleteEmptyQuery(t *testing.T) {
	places, err := Autocomplete(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestAutocompleteProxiesProvider(t *testing.T) {
	var gotQuery, gotLimit, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		gotUA = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode([]Place{
			{DisplayName: "Lisbon, Portugal", Lat: "38.7223", Lon: "-9.1393", Type: "city"},
		})
	}))
	defer srv.Close()

	orig := geocodeBaseURL
	geocodeBaseURL = srv.URL
	defer func() { geocodeBaseURL = orig }()

	places, err := Autocomplete(context.Background(), "  Lisbon   Portugal ", 3)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Lisbon, Portugal", places[0].DisplayName)

	// Query is normalized before it leaves the process.
	assert.Equal(t, "lisbon portugal", gotQuery)
	assert.Equal(t, "3", gotLimit)
	assert.NotEmpty(t, gotUA)
}

func TestAutocompleteClampsLimit(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode([]Place{})
	}))
	defer srv.Close()

	orig := geocodeBaseURL
	geocodeBaseURL = srv.URL
	defer func() { geocodeBaseURL = orig }()

	_, err := Autocomplete(context.Background(), "porto", 99)
	require.NoError(t, err)
	assert.Equal(t, "5", gotLimit)
}

func TestAutocompleteProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	orig := geocodeBaseURL
	geocodeBaseURL = srv.URL
	defer func() { geocodeBaseURL = orig }()

	_, err := Autocomplete(context.Background(), "lisbon", 5)
	assert.Error(t, err)
}
