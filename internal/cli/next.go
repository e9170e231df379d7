package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

var flagFormat string

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nThe short formats are meant for status bars such as tmux.",
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	loc, err := a.location(ctx)
	if err != nil {
		return err
	}
	times, err := a.svc.PrayerTimes(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return err
	}

	now := a.svc.Now()
	next := prayer.Next(times, now)
	layout := goTimeLayout(a.cfg.TimeFormat)

	if structured() {
		return encode(cmd.OutOrStdout(), toNextOutput(next, now, layout))
	}

	fmt.Fprint(cmd.OutOrStdout(), prayer.FormatOutput(next, now, flagFormat, layout))
	return nil
}
