package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/cache"
	"github.com/smokyabdulrahman/salah-times/internal/ui"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live countdown to the next prayer",
		Long:  "Open a full-terminal view that counts down to the next prayer every second.\nPress r to refresh and q to quit.",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Log lines would tear the alt screen unless explicitly requested.
	a, err := newApp(cmd, zerolog.Disabled)
	if err != nil {
		return err
	}

	load := func(ctx context.Context) (ui.Data, error) {
		loc, err := a.location(ctx)
		if err != nil {
			return ui.Data{}, err
		}
		times, err := a.svc.PrayerTimes(ctx, loc.Lat, loc.Lon)
		if err != nil {
			return ui.Data{}, err
		}
		st := a.loadState()
		return ui.Data{
			City:      locationLabel(loc),
			Times:     times,
			Completed: st.CompletedOn(a.svc.Now().Format(cache.DateLayout)),
		}, nil
	}

	return ui.Run(ui.Options{
		Context:    cmd.Context(),
		Load:       load,
		Now:        a.svc.Now,
		TimeFormat: a.cfg.TimeFormat,
	})
}
