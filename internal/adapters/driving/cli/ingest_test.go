package cli

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestCollectFiles_NonRecursiveSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"))
	writeTestFile(t, filepath.Join(dir, "sub", "b.txt"))

	got, err := collectFiles(dir, false, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, got)
}

func TestCollectFiles_RecursiveDescendsIntoSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"))
	writeTestFile(t, filepath.Join(dir, "sub", "b.txt"))

	got, err := collectFiles(dir, true, "")
	require.NoError(t, err)
	sort.Strings(got)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "sub", "b.txt"),
	}, got)
}

func TestCollectFiles_FiltersByGlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"))
	writeTestFile(t, filepath.Join(dir, "b.md"))

	got, err := collectFiles(dir, false, "*.md")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.md")}, got)
}

func TestIngestCmd_HasFileAndDirSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range ingestCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["file"])
	assert.True(t, names["dir"])
}

func TestIngestDirCmd_HasRecursiveAndPatternFlags(t *testing.T) {
	assert.NotNil(t, ingestDirCmd.Flags().Lookup("recursive"))
	assert.NotNil(t, ingestDirCmd.Flags().Lookup("pattern"))
}

func TestIngestFileCmd_HasCommonOverrideFlags(t *testing.T) {
	for _, name := range []string{"output", "force", "threshold", "min-chunk", "max-chunk"} {
		assert.NotNil(t, ingestFileCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}
