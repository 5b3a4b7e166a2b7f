package cli

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/veltra-labs/docvault/internal/core/domain"
	"github.com/veltra-labs/docvault/internal/vault"
)

var (
	outputOverride string
	forceReingest  bool
	thresholdFlag  float32
	minChunkFlag   int
	maxChunkFlag   int
	recursive      bool
	globPattern    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Process documents directly, without running the watcher",
}

var ingestFileCmd = &cobra.Command{
	Use:   "file <paths...>",
	Short: "Ingest one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngestFiles,
}

var ingestDirCmd = &cobra.Command{
	Use:   "dir <paths...>",
	Short: "Ingest every matching file under one or more directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngestDirs,
}

func init() {
	for _, cmd := range []*cobra.Command{ingestFileCmd, ingestDirCmd} {
		cmd.Flags().StringVarP(&outputOverride, "output", "o", "", "override data-path for this run")
		cmd.Flags().BoolVarP(&forceReingest, "force", "f", false, "reprocess even if already up to date")
		cmd.Flags().Float32VarP(&thresholdFlag, "threshold", "t", 0, "override chunking similarity threshold")
		cmd.Flags().IntVar(&minChunkFlag, "min-chunk", 0, "override minimum chunk size")
		cmd.Flags().IntVar(&maxChunkFlag, "max-chunk", 0, "override maximum chunk size")
	}
	ingestDirCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	ingestDirCmd.Flags().StringVarP(&globPattern, "pattern", "p", "", "only ingest files matching this glob")

	ingestCmd.AddCommand(ingestFileCmd, ingestDirCmd)
	rootCmd.AddCommand(ingestCmd)
}

func openVaultForIngest(cmd *cobra.Command, root string) (*vault.Vault, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if outputOverride != "" {
		cfg.DataPath = outputOverride
	}
	if thresholdFlag > 0 {
		cfg.Chunking.SimilarityThreshold = thresholdFlag
	}
	if minChunkFlag > 0 {
		cfg.Chunking.MinChunkSize = minChunkFlag
	}
	if maxChunkFlag > 0 {
		cfg.Chunking.MaxChunkSize = maxChunkFlag
	}

	v, err := vault.New(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing vault: %w", err)
	}
	return v, nil
}

func runIngestFiles(cmd *cobra.Command, args []string) error {
	root := filepath.Dir(args[0])
	v, err := openVaultForIngest(cmd, root)
	if err != nil {
		return err
	}
	defer v.Shutdown(context.Background())

	failures := 0
	for _, path := range args {
		if err := ingestOne(cmd, v, root, path); err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(args))
	}
	return nil
}

func runIngestDirs(cmd *cobra.Command, args []string) error {
	v, err := openVaultForIngest(cmd, args[0])
	if err != nil {
		return err
	}
	defer v.Shutdown(context.Background())

	failures := 0
	for _, dir := range args {
		paths, err := collectFiles(dir, recursive, globPattern)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", dir, err)
		}
		for _, path := range paths {
			if err := ingestOne(cmd, v, dir, path); err != nil {
				cmd.PrintErrf("%s: %v\n", path, err)
				failures++
			}
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d files failed", failures)
	}
	return nil
}

func collectFiles(root string, recurse bool, pattern string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recurse && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if pattern != "" {
			matched, err := filepath.Match(pattern, d.Name())
			if err != nil {
				return err
			}
			if !matched {
				return nil
			}
		}
		out = append(out, path)
		return nil
	})
	return out, err
}

func ingestOne(cmd *cobra.Command, v *vault.Vault, root, physicalPath string) error {
	relativePath, err := filepath.Rel(root, physicalPath)
	if err != nil {
		relativePath = filepath.Base(physicalPath)
	}
	relativePath = filepath.ToSlash(relativePath)

	if !forceReingest {
		if existing, err := v.Status(cmd.Context(), relativePath); err == nil && existing.Status == domain.StatusCompleted {
			cmd.Printf("%s: up to date (use -f to force)\n", relativePath)
			return nil
		}
	}

	result, err := v.IngestFile(cmd.Context(), relativePath, physicalPath)
	if err != nil {
		return err
	}

	cmd.Printf("%s: %d chunks -> %s\n", relativePath, result.ChunkCount, result.OutputPath)
	return nil
}
