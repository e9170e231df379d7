package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/salah-times/internal/config"
	"github.com/smokyabdulrahman/salah-times/internal/display"
)

// Global flags shared across all subcommands.
var (
	FlagCity       string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagMethod     int
	FlagTimeFormat string
	FlagOutput     string
	FlagCacheFile  string
	FlagNoCache    bool
	FlagVerbose    bool
)

// loadedConfig holds the config loaded during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedConfig *config.Config

// NewRootCmd creates the root command for the salah-times CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "salah-times",
		Short:   "Daily Islamic prayer times",
		Long:    "Locate yourself, fetch today's prayer times from the Al Adhan API and count down to the next prayer.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !display.ValidOutput(FlagOutput) {
				return fmt.Errorf("invalid --output %q: must be text, json or yaml", FlagOutput)
			}
			if FlagTimeFormat != "" && FlagTimeFormat != "12h" && FlagTimeFormat != "24h" {
				return fmt.Errorf("invalid --time-format %q: must be 12h or 24h", FlagTimeFormat)
			}
			if cmd.Flags().Changed("method") && (FlagMethod < 0 || FlagMethod > 23) {
				return fmt.Errorf("invalid --method %d: must be between 0 and 23", FlagMethod)
			}
			loadedConfig = cfg
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "Search for a city (takes precedence over config)")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Override longitude")
	pf.IntVar(&FlagMethod, "method", -1, "Override calculation method (0-23)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVarP(&FlagOutput, "output", "o", display.OutputText, "Output format: text, json or yaml")
	pf.StringVar(&FlagCacheFile, "cache-file", "", "Cache file (default: <tmp>/"+cacheFileHint+")")
	pf.BoolVar(&FlagNoCache, "no-cache", false, "Keep fetched times in memory only")
	pf.BoolVarP(&FlagVerbose, "verbose", "v", false, "Enable debug logging")

	// Register subcommands.
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newTimesCmd())
	rootCmd.AddCommand(newLocationCmd())
	rootCmd.AddCommand(newDoneCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("salah-times %s\n", version)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > environment > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}
	defaults := config.Defaults()

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	coordsSet := flagWasSet(flags, root, "latitude") || flagWasSet(flags, root, "longitude")
	if coordsSet {
		cfg.SetCoordinates(FlagLatitude, FlagLongitude)
	}
	// --city beats configured coordinates but not --latitude/--longitude.
	if flagWasSet(flags, root, "city") {
		cfg.City = FlagCity
		if !coordsSet {
			cfg.ClearCoordinates()
		}
	}
	if flagWasSet(flags, root, "method") {
		m := FlagMethod
		cfg.Method = &m
	} else if cfg.Method == nil {
		cfg.Method = defaults.Method
	}
	if flagWasSet(flags, root, "cache-file") {
		cfg.CacheFile = FlagCacheFile
	}

	// Time format: CLI flag > config > default ("24h").
	if flagWasSet(flags, root, "time-format") {
		cfg.TimeFormat = FlagTimeFormat
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}

	return &cfg
}

// goTimeLayout maps the time_format setting to a Go layout.
func goTimeLayout(timeFormat string) string {
	if timeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
