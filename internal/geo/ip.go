package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ipAPIURL and ipInfoURL are variables (not constants) so that tests can
// override them with an httptest server URL.
var (
	ipAPIURL  = "http://ip-api.com/json/?fields=status,message,lat,lon,city"
	ipInfoURL = "https://ipinfo.io/json"
)

// ipAPIResponse maps the response from ip-api.com. Pointers distinguish
// missing fields from zero values.
type ipAPIResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	City    *string  `json:"city"`
}

// IPAPI locates via ip-api.com, a free service that requires no API key.
type IPAPI struct {
	client *http.Client
}

// NewIPAPI returns an ip-api.com locator using client.
func NewIPAPI(client *http.Client) *IPAPI {
	return &IPAPI{client: client}
}

func (l *IPAPI) Name() string { return "ip-api" }

func (l *IPAPI) Locate(ctx context.Context) (Location, error) {
	var result ipAPIResponse
	if err := getJSON(ctx, l.client, ipAPIURL, &result); err != nil {
		return Location{}, err
	}

	if result.Status != "success" {
		return Location{}, fmt.Errorf("geolocation failed: %s", result.Message)
	}
	if result.Lat == nil || result.Lon == nil || result.City == nil {
		return Location{}, fmt.Errorf("geolocation response missing lat, lon or city")
	}

	return Location{Lat: *result.Lat, Lon: *result.Lon, City: *result.City}, nil
}

// ipInfoResponse maps the response from ipinfo.io. Loc is "lat,lon".
type ipInfoResponse struct {
	City string `json:"city"`
	Loc  string `json:"loc"`
}

// IPInfo locates via ipinfo.io.
type IPInfo struct {
	client *http.Client
}

// NewIPInfo returns an ipinfo.io locator using client.
func NewIPInfo(client *http.Client) *IPInfo {
	return &IPInfo{client: client}
}

func (l *IPInfo) Name() string { return "ipinfo" }

func (l *IPInfo) Locate(ctx context.Context) (Location, error) {
	var result ipInfoResponse
	if err := getJSON(ctx, l.client, ipInfoURL, &result); err != nil {
		return Location{}, err
	}

	lat, lon, err := parseLatLon(result.Loc)
	if err != nil {
		return Location{}, err
	}
	if result.City == "" {
		return Location{}, fmt.Errorf("geolocation response missing city")
	}
	return Location{Lat: lat, Lon: lon, City: result.City}, nil
}

func parseLatLon(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid loc %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	return lat, lon, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build geolocation request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	return nil
}
