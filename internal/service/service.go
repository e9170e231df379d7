// Package service exposes the four operations invoked by the desktop shell.
package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salah-times/internal/geo"
	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

// Locator resolves locations automatically or by search.
type Locator interface {
	Auto(ctx context.Context) geo.Location
	Search(ctx context.Context, query string) (geo.Location, error)
}

// Fetcher returns today's prayer times for coordinates.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (prayer.Times, error)
}

// Service wires the location resolver, the fetcher and the next-prayer
// calculator together.
type Service struct {
	log     zerolog.Logger
	locator Locator
	fetcher Fetcher
	now     func() time.Time
}

// New creates a Service. A nil now uses time.Now.
func New(log zerolog.Logger, locator Locator, fetcher Fetcher, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		log:     log.With().Str("module", "service").Logger(),
		locator: locator,
		fetcher: fetcher,
		now:     now,
	}
}

// LocationAuto detects the current location. The error is always nil.
func (s *Service) LocationAuto(ctx context.Context) (geo.Location, error) {
	return s.locator.Auto(ctx), nil
}

// SearchCity geocodes query. geo.ErrNotFound is preserved in the chain.
func (s *Service) SearchCity(ctx context.Context, query string) (geo.Location, error) {
	loc, err := s.locator.Search(ctx, query)
	if err != nil {
		return geo.Location{}, errors.Wrapf(err, "search %q", query)
	}
	return loc, nil
}

// PrayerTimes returns today's times near (lat, lon).
func (s *Service) PrayerTimes(ctx context.Context, lat, lon float64) (prayer.Times, error) {
	return s.fetcher.Fetch(ctx, lat, lon)
}

// NextPrayer returns the name, raw time and countdown of the next prayer.
func (s *Service) NextPrayer(times prayer.Times) (name, at, countdown string) {
	u := prayer.Next(times, s.now())
	return u.Name, u.Time, u.Countdown
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}
