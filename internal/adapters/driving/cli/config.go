package cli

import (
	"path/filepath"

	"github.com/veltra-labs/docvault/internal/config"
)

// loadConfig resolves configPath (or <data-path>/config.toml when unset)
// into a Config with dataPath filled in as a fallback. Ingest subcommands
// layer their own flag overrides (threshold, chunk sizes, output) on top
// of the result; see openVaultForIngest.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(dataPath, "config.toml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.DataPath == "" {
		cfg.DataPath = dataPath
	}
	return cfg, nil
}
