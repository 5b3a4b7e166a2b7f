package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veltra-labs/docvault/internal/logger"
	"github.com/veltra-labs/docvault/internal/vault"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch the vault root and process changes until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	v, err := vault.New(vaultRoot, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("docvaultd serving %s (data: %s)", vaultRoot, cfg.DataPath)
	return v.Serve(ctx)
}
