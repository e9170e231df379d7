package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/display"
	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

var (
	flagTimesLat float64
	flagTimesLon float64
)

func newTimesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "times",
		Short: "Print today's prayer times for coordinates",
		Long:  "Fetch today's five prayer times for --lat/--lon, using the cache when possible.",
		RunE:  runTimes,
	}

	cmd.Flags().Float64Var(&flagTimesLat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&flagTimesLon, "lon", 0, "Longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}

func runTimes(cmd *cobra.Command, args []string) error {
	if flagTimesLat < -90 || flagTimesLat > 90 || flagTimesLon < -180 || flagTimesLon > 180 {
		return fmt.Errorf("coordinates out of range: %v, %v", flagTimesLat, flagTimesLon)
	}

	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}

	times, err := a.svc.PrayerTimes(cmd.Context(), flagTimesLat, flagTimesLon)
	if err != nil {
		return err
	}

	if structured() {
		return encode(cmd.OutOrStdout(), times)
	}

	table := display.NewTable([]string{"Prayer", "Time"})
	for _, name := range prayer.Names {
		raw, _ := times.Get(name)
		table.AddRow([]string{name, raw})
	}
	fmt.Fprint(cmd.OutOrStdout(), table.Render())
	return nil
}
