package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/vault"
)

var statusCmd = &cobra.Command{
	Use:   "status <path>",
	Short: "Show the indexed status of a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	v, err := vault.New(vaultRoot, cfg)
	if err != nil {
		return err
	}
	defer v.Shutdown(cmd.Context())

	sf, err := v.Status(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Printf("%s: not indexed\n", args[0])
			return nil
		}
		return err
	}

	cmd.Printf("%s: %s (%d chunks, hash %s, synced %t)\n", sf.Path, sf.Status, sf.ChunkCount, sf.Hash, sf.IsSynced)
	if sf.ArchivePath != nil {
		cmd.Printf("  archive: %s\n", *sf.ArchivePath)
	}
	if sf.ProcessedAt != nil {
		cmd.Printf("  processed: %s\n", sf.ProcessedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}
