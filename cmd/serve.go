package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adaptlearn/skilltrace/internal/sidecar"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sequence-model sidecar service",
	Long: "Serves the sequence model over HTTP so the engine can run it as a " +
		"separate process. The engine's gateway falls back to a heuristic when " +
		"this service is unreachable, so restarting it is always safe.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		model, err := buildModel(cfg)
		if err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Sidecar.Addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return sidecar.New(addr, model, log).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides sidecar.addr from config)")
}
