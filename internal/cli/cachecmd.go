package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/cache"
	"github.com/smokyabdulrahman/salah-times/internal/display"
	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clean the prayer times cache",
		Long:  "Every fetched day is kept in a single JSON file. Use these subcommands to inspect or trim it.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print cache file path",
		Args:  cobra.NoArgs,
		RunE:  runCachePath,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List cached entries",
		Args:  cobra.NoArgs,
		RunE:  runCacheShow,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Drop entries from days before today",
		Args:  cobra.NoArgs,
		RunE:  runCachePrune,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the cache file",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	})

	return cmd
}

// fileStore returns the on-disk cache regardless of --no-cache.
func fileStore(cmd *cobra.Command) (*app, *cache.FileStore, error) {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return nil, nil, err
	}
	return a, cache.NewFileStore(a.log, a.cfg.CacheFile), nil
}

func runCachePath(cmd *cobra.Command, args []string) error {
	_, fs, err := fileStore(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), fs.Path())
	return nil
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	_, fs, err := fileStore(cmd)
	if err != nil {
		return err
	}
	snap := fs.Load()

	if structured() {
		if snap.Entries == nil {
			snap.Entries = []cache.Entry{}
		}
		return encode(cmd.OutOrStdout(), snap)
	}

	w := cmd.OutOrStdout()
	if len(snap.Entries) == 0 {
		fmt.Fprintf(w, "Cache is empty (%s)\n", fs.Path())
		return nil
	}

	headers := append([]string{"Date", "Latitude", "Longitude"}, prayer.Names...)
	table := display.NewTable(headers)
	for _, e := range snap.Entries {
		row := []string{e.Date, fmt.Sprintf("%.4f", e.Lat), fmt.Sprintf("%.4f", e.Lon)}
		for _, name := range prayer.Names {
			raw, _ := e.Timings.Get(name)
			row = append(row, raw)
		}
		table.AddRow(row)
	}
	fmt.Fprintf(w, "  %s\n\n", display.Dim(fs.Path()))
	fmt.Fprint(w, table.Render())
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	a, fs, err := fileStore(cmd)
	if err != nil {
		return err
	}

	today := a.svc.Now().Format(cache.DateLayout)
	snap, removed := fs.Load().PruneBefore(today)
	if removed > 0 {
		fs.Save(snap)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %s\n", removed, today)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	_, fs, err := fileStore(cmd)
	if err != nil {
		return err
	}
	if err := fs.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}
