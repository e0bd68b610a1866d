package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeListRoot() *cobra.Command {
	l := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: runList,
	}
	addListFlags(l)
	return makeRoot(l)
}

func TestList_Text(t *testing.T) {
	dir := t.TempDir()
	writePath(t, dir, "patrol", samplePath())
	writePath(t, dir, "gate", samplePath()[:1])
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.path"), []byte{0x00, 0x05, 'w'}, 0644))

	stdout, stderr, err := execute(t, makeListRoot(), "list", "--paths-dir", dir)
	require.NoError(t, err)

	assert.Regexp(t, `gate\s+1 waypoints\n`, stdout)
	assert.Regexp(t, `patrol\s+2 waypoints\n`, stdout)
	assert.Less(t, indexOf(stdout, "gate"), indexOf(stdout, "patrol"), "names are sorted")
	assert.Contains(t, stderr, "broken.path")
	assert.Contains(t, stderr, "truncated")
}

func TestList_JSON(t *testing.T) {
	dir := t.TempDir()
	writePath(t, dir, "patrol", samplePath())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.path"), nil, 0644))

	stdout, _, err := execute(t, makeListRoot(), "list", "--paths-dir", dir, "--format", "json")
	require.NoError(t, err)

	var got ListResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), "output should be valid JSON: %s", stdout)
	assert.Equal(t, []PathSummary{{Name: "patrol", Waypoints: 2}}, got.Paths)
	require.Len(t, got.Failures, 1)
	assert.Equal(t, filepath.Join(dir, "empty.path"), got.Failures[0].File)
	assert.Equal(t, "path contains no waypoints", got.Failures[0].Error)
}

func TestList_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "paths")

	_, stderr, err := execute(t, makeListRoot(), "list", "--paths-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "no paths in")
	assert.DirExists(t, dir)
}

func TestList_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, makeListRoot(), "list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
