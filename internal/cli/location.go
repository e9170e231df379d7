package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/display"
	"github.com/smokyabdulrahman/salah-times/internal/geo"
)

func newLocationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Detect, search and manage locations",
		Long:  "Detect the current location from your IP, search for a city, and manage saved locations.\nWhen run without subcommands, shows the location the views would use.",
		RunE:  runLocationShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "auto",
		Short: "Detect the location from your IP address",
		Long:  "Query IP geolocation services in order. Falls back to London when every lookup fails.",
		Args:  cobra.NoArgs,
		RunE:  runLocationAuto,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search <city>",
		Short: "Search for a city and remember it",
		Long:  "Geocode a city name. The result becomes the last used location for the views.\n\nExample:\n  salah-times location search Cairo",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLocationSearch,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save [city]",
		Short: "Save a location for quick switching",
		Long:  "Search for city and save it. Without an argument, saves the location the views currently use.",
		RunE:  runLocationSave,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved locations",
		Args:  cobra.NoArgs,
		RunE:  runLocationList,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use <city>",
		Short: "Switch to a saved location",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLocationUse,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <city>",
		Short: "Remove a saved location",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLocationRemove,
	})

	return cmd
}

func runLocationShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}
	loc, err := a.location(cmd.Context())
	if err != nil {
		return err
	}
	return printLocation(cmd.OutOrStdout(), loc)
}

func runLocationAuto(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}
	loc, err := a.svc.LocationAuto(cmd.Context())
	if err != nil {
		return err
	}
	return printLocation(cmd.OutOrStdout(), loc)
}

func runLocationSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}
	loc, err := a.svc.SearchCity(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	st := a.loadState()
	st.Remember(loc)
	if err := a.saveState(st); err != nil {
		return err
	}
	return printLocation(cmd.OutOrStdout(), loc)
}

func runLocationSave(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}

	var loc geo.Location
	if len(args) > 0 {
		loc, err = a.svc.SearchCity(cmd.Context(), strings.Join(args, " "))
	} else {
		loc, err = a.location(cmd.Context())
	}
	if err != nil {
		return err
	}
	if loc.City == "" {
		return fmt.Errorf("location %s has no name; pass a city to save", locationLabel(loc))
	}

	st := a.loadState()
	replaced := st.AddSaved(loc)
	if err := a.saveState(st); err != nil {
		return err
	}

	verb := "Saved"
	if replaced {
		verb = "Updated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%.4f, %.4f)\n", verb, loc.City, loc.Lat, loc.Lon)
	return nil
}

func runLocationList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}
	st := a.loadState()

	if structured() {
		saved := st.SavedLocations
		if saved == nil {
			saved = []geo.Location{}
		}
		return encode(cmd.OutOrStdout(), saved)
	}

	w := cmd.OutOrStdout()
	if len(st.SavedLocations) == 0 {
		fmt.Fprintln(w, "No saved locations. Use 'salah-times location save <city>' to add one.")
		return nil
	}

	table := display.NewTable([]string{"City", "Latitude", "Longitude"})
	for i, l := range st.SavedLocations {
		table.AddRow([]string{l.City, fmt.Sprintf("%.4f", l.Lat), fmt.Sprintf("%.4f", l.Lon)})
		if st.LastLocation != nil && strings.EqualFold(st.LastLocation.City, l.City) {
			table.SetHighlightRow(i)
		}
	}
	fmt.Fprint(w, table.Render())
	return nil
}

func runLocationUse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}
	city := strings.Join(args, " ")

	st := a.loadState()
	loc, ok := st.Find(city)
	if !ok {
		return fmt.Errorf("no saved location named %q", city)
	}
	st.Remember(loc)
	if err := a.saveState(st); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Using %s\n", loc.City)
	return nil
}

func runLocationRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}
	city := strings.Join(args, " ")

	st := a.loadState()
	if !st.RemoveSaved(city) {
		return fmt.Errorf("no saved location named %q", city)
	}
	if err := a.saveState(st); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", city)
	return nil
}

// printLocation writes loc as text or in the --output format.
func printLocation(w io.Writer, loc geo.Location) error {
	if structured() {
		return encode(w, loc)
	}
	fmt.Fprintf(w, "%s (%.4f, %.4f)\n", locationLabel(loc), loc.Lat, loc.Lon)
	return nil
}
