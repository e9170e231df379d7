// Package timings fetches a day's prayer times, consulting the cache before
// calling the remote API.
package timings

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salah-times/internal/api"
	"github.com/smokyabdulrahman/salah-times/internal/cache"
	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

// Source is the remote timings API.
type Source interface {
	FetchTimings(ctx context.Context, date time.Time, lat, lon float64, method int) (*api.Response, error)
}

// Fetcher returns today's prayer times for a coordinate pair.
type Fetcher struct {
	log    zerolog.Logger
	store  cache.Store
	source Source
	method int
	now    func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClock overrides the clock used to decide "today".
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher builds a Fetcher that asks source with the given calculation method.
func NewFetcher(log zerolog.Logger, store cache.Store, source Source, method int, opts ...Option) *Fetcher {
	f := &Fetcher{
		log:    log.With().Str("module", "timings").Logger(),
		store:  store,
		source: source,
		method: method,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns today's times near (lat, lon). A cache hit makes no remote
// call. On a miss the API is called once and the result is cached.
func (f *Fetcher) Fetch(ctx context.Context, lat, lon float64) (prayer.Times, error) {
	now := f.now()
	today := now.Format(cache.DateLayout)

	if e, ok := f.store.Load().Lookup(today, lat, lon); ok {
		f.log.Debug().Str("date", today).Float64("lat", lat).Float64("lon", lon).Msg("cache hit")
		return e.Timings, nil
	}

	f.log.Debug().Str("date", today).Float64("lat", lat).Float64("lon", lon).Msg("cache miss, calling API")
	resp, err := f.source.FetchTimings(ctx, now, lat, lon, f.method)
	if err != nil {
		return prayer.Times{}, errors.Wrap(err, "failed to fetch prayer times")
	}
	// Missing names default to 00:00 but a missing mapping is never cached.
	if resp == nil || resp.Data.Timings == nil {
		return prayer.Times{}, errors.New("failed to parse prayer times: response has no timings")
	}

	times := prayer.TimesFromMap(resp.Data.Timings)

	// Reload so entries written since the lookup are not lost.
	snap := f.store.Load().Replace(cache.Entry{
		Date:    today,
		Lat:     lat,
		Lon:     lon,
		Timings: times,
	})
	f.store.Save(snap)

	return times, nil
}
