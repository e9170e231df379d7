package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// geocodeURL is the ArcGIS World Geocoding endpoint. Variable for tests.
var geocodeURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer/findAddressCandidates"

type geocodeResponse struct {
	Candidates []struct {
		Address  string `json:"address"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
	} `json:"candidates"`
}

// Geocoder turns free-text place names into locations.
type Geocoder struct {
	httpClient *http.Client
}

// NewGeocoder creates a Geocoder with a 10s timeout.
func NewGeocoder() *Geocoder {
	return &Geocoder{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Search returns the best candidate for query. A blank query or an empty
// candidate list yields ErrNotFound.
func (g *Geocoder) Search(ctx context.Context, query string) (Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Location{}, ErrNotFound
	}

	params := url.Values{}
	params.Set("f", "json")
	params.Set("singleLine", query)
	params.Set("maxLocations", "1")
	reqURL := fmt.Sprintf("%s?%s", geocodeURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocoding API returned status %d", resp.StatusCode)
	}

	var result geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Location{}, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return Location{}, ErrNotFound
	}

	c := result.Candidates[0]
	return Location{Lat: c.Location.Y, Lon: c.Location.X, City: c.Address}, nil
}
