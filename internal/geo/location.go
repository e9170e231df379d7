// Package geo resolves the user's location, either automatically from the
// public IP address or from a free-text place search.
package geo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Search when the geocoder has no candidate.
var ErrNotFound = errors.New("location not found")

// Location is a resolved place.
type Location struct {
	Lat  float64 `json:"lat" yaml:"lat" toml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon" toml:"lon"`
	City string  `json:"city" yaml:"city" toml:"city"`
}

// Fallback is used when every automatic lookup fails.
var Fallback = Location{Lat: 51.5074, Lon: -0.1278, City: "London"}

// Locator determines a location without user input.
type Locator interface {
	Name() string
	Locate(ctx context.Context) (Location, error)
}

// FirstOf tries each locator in order and returns the first success.
// Failures are logged at debug and fallback is returned when all fail.
func FirstOf(ctx context.Context, log zerolog.Logger, fallback Location, locators ...Locator) Location {
	for _, l := range locators {
		loc, err := l.Locate(ctx)
		if err == nil {
			return loc
		}
		log.Debug().Err(err).Str("locator", l.Name()).Msg("auto location failed")
	}
	log.Debug().Str("city", fallback.City).Msg("using fallback location")
	return fallback
}

// Resolver combines automatic detection and search.
type Resolver struct {
	log      zerolog.Logger
	locators []Locator
	search   *Geocoder
}

// NewResolver returns a Resolver using ip-api.com, then ipinfo.io, then
// Fallback for automatic detection and ArcGIS for search.
func NewResolver(log zerolog.Logger) *Resolver {
	client := &http.Client{Timeout: 5 * time.Second}
	return &Resolver{
		log:      log.With().Str("module", "geo").Logger(),
		locators: []Locator{NewIPAPI(client), NewIPInfo(client)},
		search:   NewGeocoder(),
	}
}

// Auto detects the location from the public IP. It never fails.
func (r *Resolver) Auto(ctx context.Context) Location {
	return FirstOf(ctx, r.log, Fallback, r.locators...)
}

// Search geocodes a free-text query.
func (r *Resolver) Search(ctx context.Context, query string) (Location, error) {
	loc, err := r.search.Search(ctx, query)
	if err != nil {
		return Location{}, err
	}
	r.log.Debug().Str("query", query).Str("city", loc.City).Msg("search resolved")
	return loc, nil
}
