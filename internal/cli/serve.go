package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-times/internal/server"
)

var flagAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP/JSON bridge for a desktop shell",
		Long:  "Expose location detection, city search, prayer times and the next-prayer calculation over a local HTTP/JSON API.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default: listen_addr config or 127.0.0.1:8765)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, zerolog.InfoLevel)
	if err != nil {
		return err
	}

	addr := a.cfg.ListenAddrOrDefault()
	if cmd.Flags().Changed("addr") {
		addr = flagAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.log, a.svc, server.Config{
		Addr:           addr,
		AllowedOrigins: a.cfg.Origins(),
	})
	return srv.Run(ctx)
}
