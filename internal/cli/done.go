package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/cache"
	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <prayer>",
		Short: "Toggle a prayer as completed for today",
		Long:  fmt.Sprintf("Mark or unmark a prayer as completed today. Completed prayers are struck through in the today view.\nValid prayers: %s", strings.Join(prayer.Names, ", ")),
		Args:  cobra.ExactArgs(1),
		RunE:  runDone,
	}
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.WarnLevel)
	if err != nil {
		return err
	}

	today := a.svc.Now().Format(cache.DateLayout)
	st := a.loadState()
	completed, err := st.ToggleCompleted(today, args[0])
	if err != nil {
		return err
	}
	if err := a.saveState(st); err != nil {
		return err
	}

	name, _ := prayer.CanonicalName(args[0])
	if completed {
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as done\n", name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Unmarked %s\n", name)
	}
	return nil
}
