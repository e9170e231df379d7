package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/config"
	"github.com/smokyabdulrahman/salah-times/internal/geo"
)

func nopLogger() zerolog.Logger { return zerolog.Nop() }

type stubSource struct {
	auto     geo.Location
	found    geo.Location
	err      error
	searched string
}

func (s *stubSource) LocationAuto(ctx context.Context) (geo.Location, error) {
	return s.auto, nil
}

func (s *stubSource) SearchCity(ctx context.Context, query string) (geo.Location, error) {
	s.searched = query
	return s.found, s.err
}

// ---------------------------------------------------------------------------
// resolveLocation
// ---------------------------------------------------------------------------

func withCoords(cfg config.Config, lat, lon float64) config.Config {
	cfg.SetCoordinates(lat, lon)
	return cfg
}

func TestResolveLocation_Precedence(t *testing.T) {
	cairo := geo.Location{Lat: 30.0444, Lon: 31.2357, City: "Cairo"}
	last := &geo.Location{Lat: 21.4225, Lon: 39.8262, City: "Makkah"}
	auto := geo.Location{Lat: 1, Lon: 2, City: "Auto"}

	tests := []struct {
		name       string
		cfg        config.Config
		last       *geo.Location
		want       geo.Location
		wantSearch string
	}{
		{"coordinates win", withCoords(config.Config{City: "Cairo"}, 10, 20), last, geo.Location{Lat: 10, Lon: 20, City: "Cairo"}, ""},
		{"zero coordinates", withCoords(config.Config{}, 0, 0), last, geo.Location{}, ""},
		{"city searched", config.Config{City: "Cairo"}, last, cairo, "Cairo"},
		{"last location", config.Config{}, last, *last, ""},
		{"auto detect", config.Config{}, nil, auto, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubSource{auto: auto, found: cairo}
			got, err := resolveLocation(context.Background(), &tt.cfg, src, tt.last)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveLocation() = %+v, want %+v", got, tt.want)
			}
			if src.searched != tt.wantSearch {
				t.Errorf("searched %q, want %q", src.searched, tt.wantSearch)
			}
		})
	}
}

func TestResolveLocation_SearchError(t *testing.T) {
	src := &stubSource{err: geo.ErrNotFound}
	_, err := resolveLocation(context.Background(), &config.Config{City: "Atlantis"}, src, nil)
	if !errors.Is(err, geo.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound in chain", err)
	}
}

// ---------------------------------------------------------------------------
// effectiveConfig
// ---------------------------------------------------------------------------

func parsedRoot(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	root := NewRootCmd("test")
	if err := root.PersistentFlags().Parse(args); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestEffectiveConfig_CityFlagBeatsConfiguredCoordinates(t *testing.T) {
	loaded := withCoords(config.Config{}, 51.5, -0.1)
	loadedConfig = &loaded
	t.Cleanup(func() { loadedConfig = nil })

	cfg := effectiveConfig(parsedRoot(t, "--city", "Cairo"))
	if cfg.HasCoordinates() || cfg.City != "Cairo" {
		t.Errorf("cfg = %+v, want city only", cfg)
	}
	if lat, _ := loadedConfig.Coordinates(); lat != 51.5 {
		t.Error("effectiveConfig mutated the loaded config")
	}
}

func TestEffectiveConfig_CoordinateFlagsBeatCity(t *testing.T) {
	loadedConfig = &config.Config{}
	t.Cleanup(func() { loadedConfig = nil })

	cfg := effectiveConfig(parsedRoot(t, "--city", "Cairo", "--latitude", "10", "--longitude", "20"))
	if lat, lon := cfg.Coordinates(); lat != 10 || lon != 20 {
		t.Errorf("cfg = %+v, want flag coordinates", cfg)
	}
}

func TestEffectiveConfig_ZeroCoordinateFlags(t *testing.T) {
	loadedConfig = &config.Config{City: "Cairo"}
	t.Cleanup(func() { loadedConfig = nil })

	cfg := effectiveConfig(parsedRoot(t, "--latitude", "0", "--longitude", "0"))
	if !cfg.HasCoordinates() {
		t.Fatalf("cfg = %+v, want explicit 0,0 coordinates", cfg)
	}
	loc, err := resolveLocation(context.Background(), cfg, &stubSource{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Lat != 0 || loc.Lon != 0 {
		t.Errorf("location = %+v, want 0,0", loc)
	}
}

func TestEffectiveConfig_Defaults(t *testing.T) {
	loadedConfig = nil
	cfg := effectiveConfig(parsedRoot(t))
	if cfg.MethodOrDefault(-1) != config.DefaultMethod || cfg.TimeFormat != "24h" {
		t.Errorf("cfg = %+v, want default method and 24h", cfg)
	}

	cfg = effectiveConfig(parsedRoot(t, "--method", "5", "--time-format", "12h"))
	if cfg.MethodOrDefault(-1) != 5 || cfg.TimeFormat != "12h" {
		t.Errorf("cfg = %+v, want method 5 and 12h", cfg)
	}
}

// ---------------------------------------------------------------------------
// today view
// ---------------------------------------------------------------------------

func TestBuildToday(t *testing.T) {
	now := time.Date(2026, 2, 28, 13, 0, 0, 0, time.UTC)
	loc := geo.Location{Lat: 51.5, Lon: -0.1, City: "London"}

	out := buildToday(loc, sampleTimes(), now, nil, "3:04 PM")
	if out.Date != "2026-02-28" || out.Current != "Dhuhr" {
		t.Errorf("date/current = %q/%q", out.Date, out.Current)
	}
	if out.Next.Prayer != "Asr" || out.Next.Time != "4:00 PM" || out.Next.Remaining != "3h 0m" || out.Next.Tomorrow {
		t.Errorf("next = %+v", out.Next)
	}
	if out.Completed == nil {
		t.Error("completed should encode as an empty list")
	}
}

func TestBuildToday_AfterIsha(t *testing.T) {
	now := time.Date(2026, 2, 28, 22, 0, 0, 0, time.UTC)
	out := buildToday(geo.Location{}, sampleTimes(), now, nil, "15:04")
	if out.Next.Prayer != "Fajr" || !out.Next.Tomorrow {
		t.Errorf("next = %+v, want tomorrow's Fajr", out.Next)
	}
}

func TestPrintTodayRich(t *testing.T) {
	now := time.Date(2026, 2, 28, 13, 0, 0, 0, time.UTC)
	out := buildToday(geo.Location{City: "London"}, sampleTimes(), now, []string{"Fajr"}, "15:04")

	var buf bytes.Buffer
	printTodayRich(&buf, out, sampleTimes(), now, "15:04")
	got := buf.String()

	for _, want := range []string{"Prayer Times", "London", "Saturday, 28 Feb 2026", "Fajr", "20:30", "Asr at 16:00, in 3h 0m"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "(tomorrow)") {
		t.Error("next prayer is today, not tomorrow")
	}
}

func TestLocationLabel(t *testing.T) {
	if got := locationLabel(geo.Location{City: "Riyadh"}); got != "Riyadh" {
		t.Errorf("locationLabel = %q", got)
	}
	if got := locationLabel(geo.Location{Lat: 24.7136, Lon: 46.6753}); got != "24.7136, 46.6753" {
		t.Errorf("locationLabel = %q", got)
	}
}
