// Package cli implements docvaultd's command-line surface: ingest, serve
// and status subcommands over the internal/vault container.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/veltra-labs/docvault/internal/logger"
)

var version = "dev"

// configPath, vaultRoot, dataPath and verboseOut are bound by persistent
// flags shared by every subcommand that touches a vault.
var (
	configPath string
	vaultRoot  string
	dataPath   string
	verboseOut bool
)

var rootCmd = &cobra.Command{
	Use:     "docvaultd",
	Version: version,
	Short:   "WebDAV-watched semantic document ingestion",
	Long: `docvaultd watches a directory, chunks changed documents by
sentence-embedding similarity, archives the chunks in a columnar file
per source, indexes them relationally, and backfills embeddings in the
background.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verboseOut)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: <data-path>/config.toml)")
	rootCmd.PersistentFlags().StringVar(&vaultRoot, "root", ".", "watched vault root directory")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", ".docvault", "directory for the version map, index and archives")
	rootCmd.PersistentFlags().BoolVarP(&verboseOut, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command, returning any error for main to report.
func Execute() error {
	return rootCmd.Execute()
}
