package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/cache"
	"github.com/smokyabdulrahman/salah-times/internal/display"
	"github.com/smokyabdulrahman/salah-times/internal/geo"
	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

func runToday(cmd *cobra.Command, args []string) error {
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
	st := a.loadState()
	out := buildToday(loc, times, now, st.CompletedOn(now.Format(cache.DateLayout)), goTimeLayout(a.cfg.TimeFormat))

	if structured() {
		return encode(cmd.OutOrStdout(), out)
	}
	printTodayRich(cmd.OutOrStdout(), out, times, now, goTimeLayout(a.cfg.TimeFormat))
	return nil
}

// todayOutput is the structured output of the root command.
type todayOutput struct {
	Location  geo.Location `json:"location" yaml:"location"`
	Date      string       `json:"date" yaml:"date"`
	Timings   prayer.Times `json:"timings" yaml:"timings"`
	Current   string       `json:"current" yaml:"current"`
	Next      nextOutput   `json:"next" yaml:"next"`
	Completed []string     `json:"completed" yaml:"completed"`
}

type nextOutput struct {
	Prayer    string `json:"prayer" yaml:"prayer"`
	Time      string `json:"time" yaml:"time"`
	Remaining string `json:"remaining" yaml:"remaining"`
	Tomorrow  bool   `json:"tomorrow" yaml:"tomorrow"`
}

func buildToday(loc geo.Location, times prayer.Times, now time.Time, completed []string, layout string) todayOutput {
	next := prayer.Next(times, now)
	if completed == nil {
		completed = []string{}
	}
	return todayOutput{
		Location:  loc,
		Date:      now.Format(cache.DateLayout),
		Timings:   times,
		Current:   prayer.Current(times, now),
		Next:      toNextOutput(next, now, layout),
		Completed: completed,
	}
}

func toNextOutput(u prayer.Upcoming, now time.Time, layout string) nextOutput {
	out := nextOutput{Prayer: u.Name, Time: u.Time, Remaining: u.Countdown}
	// Next only leaves At unset when wrapping to tomorrow's Fajr.
	if u.At.IsZero() {
		out.Tomorrow = true
		return out
	}
	out.Time = u.At.Format(layout)
	out.Tomorrow = u.At.Format(cache.DateLayout) != now.Format(cache.DateLayout)
	return out
}

// printTodayRich renders the styled terminal view of today's schedule.
func printTodayRich(w io.Writer, out todayOutput, times prayer.Times, now time.Time, layout string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", locationLabel(out.Location))
	fmt.Fprintf(w, "  %s\n", display.Dim(now.Format("Monday, 02 Jan 2006")))
	fmt.Fprintln(w)

	parsed := make(map[string]time.Time, len(prayer.Names))
	for _, p := range prayer.Parse(times, now) {
		parsed[p.Name] = p.Time
	}

	table := display.NewTable([]string{"Prayer", "Time"})
	for i, name := range prayer.Names {
		raw, _ := times.Get(name)
		shown := raw
		if at, ok := parsed[name]; ok {
			shown = at.Format(layout)
		}
		table.AddRow([]string{name, shown})

		if slices.Contains(out.Completed, name) {
			table.StrikeRow(i)
		}
		if name == out.Next.Prayer && !out.Next.Tomorrow {
			table.SetHighlightRow(i)
		}
	}
	fmt.Fprint(w, table.Render())
	fmt.Fprintln(w)

	label := out.Next.Prayer
	if out.Next.Tomorrow {
		label += " (tomorrow)"
	}
	fmt.Fprintf(w, "  %s %s\n", display.Dim("Next:"), display.Accent(fmt.Sprintf("%s at %s, in %s", label, out.Next.Time, out.Next.Remaining)))
	fmt.Fprintln(w)
}
