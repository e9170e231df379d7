package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/api"
	"github.com/smokyabdulrahman/salah-times/internal/cache"
	"github.com/smokyabdulrahman/salah-times/internal/config"
	"github.com/smokyabdulrahman/salah-times/internal/display"
	"github.com/smokyabdulrahman/salah-times/internal/geo"
	"github.com/smokyabdulrahman/salah-times/internal/logger"
	"github.com/smokyabdulrahman/salah-times/internal/service"
	"github.com/smokyabdulrahman/salah-times/internal/state"
	"github.com/smokyabdulrahman/salah-times/internal/timings"
)

const cacheFileHint = cache.DefaultFileName

// app bundles the components a command needs, built from the effective config.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	store     cache.Store
	statePath string
	svc       *service.Service
}

// newApp wires logger, cache, fetcher, resolver and service. fallback is the
// log level used when neither log_level nor --verbose is set.
func newApp(cmd *cobra.Command, fallback zerolog.Level) (*app, error) {
	cfg := effectiveConfig(cmd)

	level := cfg.LogLevel
	if FlagVerbose {
		level = "debug"
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), level, fallback)

	var store cache.Store
	if FlagNoCache {
		store = cache.NewMemoryStore()
	} else {
		store = cache.NewFileStore(log, cfg.CacheFile)
	}

	statePath, err := statePathFor(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := timings.NewFetcher(log, store, api.NewClient(), cfg.MethodOrDefault(config.DefaultMethod))
	svc := service.New(log, geo.NewResolver(log), fetcher, nil)

	return &app{
		cfg:       cfg,
		log:       log,
		store:     store,
		statePath: statePath,
		svc:       svc,
	}, nil
}

func statePathFor(cfg *config.Config) (string, error) {
	if cfg.StateFile != "" {
		return cfg.StateFile, nil
	}
	return state.DefaultPath()
}

// loadState reads the state file. It never fails.
func (a *app) loadState() state.State {
	return state.Load(a.statePath)
}

func (a *app) saveState(s state.State) error {
	if err := state.Save(a.statePath, s); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// location resolves the location for the views.
func (a *app) location(ctx context.Context) (geo.Location, error) {
	st := a.loadState()
	return resolveLocation(ctx, a.cfg, a.svc, st.LastLocation)
}

// locationSource is the subset of the service used to resolve a location.
type locationSource interface {
	LocationAuto(ctx context.Context) (geo.Location, error)
	SearchCity(ctx context.Context, query string) (geo.Location, error)
}

// resolveLocation picks a location. Priority: coordinates > city search >
// last used location > IP auto-detect. effectiveConfig has already folded
// --latitude, --longitude and --city into cfg.
func resolveLocation(ctx context.Context, cfg *config.Config, src locationSource, last *geo.Location) (geo.Location, error) {
	switch {
	case cfg.HasCoordinates():
		lat, lon := cfg.Coordinates()
		return geo.Location{Lat: lat, Lon: lon, City: cfg.City}, nil
	case cfg.City != "":
		loc, err := src.SearchCity(ctx, cfg.City)
		if err != nil {
			return geo.Location{}, fmt.Errorf("failed to find city: %w", err)
		}
		return loc, nil
	case last != nil:
		return *last, nil
	default:
		return src.LocationAuto(ctx)
	}
}

// locationLabel renders a location for display.
func locationLabel(loc geo.Location) string {
	if loc.City != "" {
		return loc.City
	}
	return fmt.Sprintf("%.4f, %.4f", loc.Lat, loc.Lon)
}

// structured reports whether --output asks for JSON or YAML.
func structured() bool {
	return FlagOutput == display.OutputJSON || FlagOutput == display.OutputYAML
}

// encode writes v in the --output format.
func encode(w io.Writer, v any) error {
	return display.Encode(w, FlagOutput, v)
}
