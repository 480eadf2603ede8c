package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"vendor-match-service/internal/adapters/httpx"
	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/platform/obs"
)

// ORSGeocoder resolves free-text addresses via the OpenRouteService
// geocoding API, consulting the persistent cache first. Safe for
// concurrent use.
type ORSGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
	cache   *SQLCache
}

func NewORSGeocoder(apiKey, country string, cache *SQLCache) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if country == "" {
		country = "IN"
	}

	return &ORSGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		country: country,
		cache:   cache,
	}, nil
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (g *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Location, err error) {
	defer obs.Time(ctx, "ors.geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Location{}, errors.New("geocode: address must be non-empty")
	}

	if g.cache != nil {
		loc, ok, err := g.cache.Get(ctx, norm)
		if err != nil {
			return domain.Location{}, fmt.Errorf("geocode cache lookup: %w", err)
		}
		if ok {
			return loc, nil
		}
	}

	endpoint := g.baseURL + "/geocode/search"

	resp, err := httpx.DoWithRetry(ctx, g.session, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", g.apiKey)
		req.Header.Set("Accept", "application/json")

		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", g.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Location{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Location{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Location{}, fmt.Errorf("no geocode results for %q", address)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Location{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	loc := domain.Location{Lng: coords[0], Lat: coords[1], Address: norm}

	if g.cache != nil {
		if err := g.cache.Put(ctx, norm, loc); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return loc, nil
}
