package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"estately-server/logger"
	"estately-server/storage"
)

// geocodeBaseURL points at a Nominatim-compatible endpoint. Overridable for
// self-hosted instances and tests.
var geocodeBaseURL = "https://nominatim.openstreetmap.org"

const geocodeCacheTTL = 24 * time.Hour

// Place is one autocomplete suggestion from the geocoding provider.
type Place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

// Autocomplete proxies a location query to the geocoding provider. Results
// are cached in Redis per normalized query; the request context flows into
// the outbound call so an aborted client cancels the lookup.
func Autocomplete(ctx context.Context, query string, limit int) ([]Place, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if normalized == "" {
		return []Place{}, nil
	}
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	cacheKey := fmt.Sprintf("geocode:%d:%s", limit, normalized)
	if storage.Redis != nil {
		if cached, err := storage.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var places []Place
			if err := json.Unmarshal([]byte(cached), &places); err == nil {
				return places, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=%d&addressdetails=0",
		geocodeBaseURL, url.QueryEscape(normalized), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// Nominatim's usage policy requires an identifying UA.
	req.Header.Set("User-Agent", userAgent())

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding status %d", res.StatusCode)
	}

	var places []Place
	if err := json.NewDecoder(res.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}

	if storage.Redis != nil {
		if encoded, err := json.Marshal(places); err == nil {
			if err := storage.Redis.Set(ctx, cacheKey, encoded, geocodeCacheTTL).Err(); err != nil {
				logger.S().Debugw("geocode cache write failed", "error", err)
			}
		}
	}

	return places, nil
}

func userAgent() string {
	if ua := os.Getenv("GEOCODE_USER_AGENT"); ua != "" {
		return ua
	}
	return "estately-server/1.0"
}
