package pathstore

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/npcpath/npcpath/internal/metrics"
	"github.com/npcpath/npcpath/internal/registry"
	"github.com/npcpath/npcpath/internal/waypoint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, traj waypoint.Trajectory) []byte {
	t.Helper()
	data, err := waypoint.Encode(traj)
	require.NoError(t, err)
	return data
}

func newTestLoader(t *testing.T, dir string) (*Loader, *registry.Registry, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	reg := registry.New()
	l := NewLoader(New(dir), reg,
		WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	return l, reg, &logs
}

func TestLoader_LoadAll_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "paths")
	l, reg, _ := newTestLoader(t, dir)

	res, err := l.LoadAll()
	require.NoError(t, err)
	assert.Zero(t, res.Loaded)
	assert.Empty(t, res.Failures)
	assert.DirExists(t, dir)
	assert.Zero(t, reg.Len())
}

func TestLoader_LoadAll_ValidAndTruncated(t *testing.T) {
	dir := t.TempDir()
	valid := waypoint.Trajectory{
		{World: "w", X: 0, Y: 64, Z: 0},
		{World: "w", X: 5, Y: 70, Z: 5, Yaw: 90, Pitch: 10},
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.path"), encode(t, valid), 0600))
	data := encode(t, valid)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.path"), data[:len(data)-3], 0600))

	l, reg, logs := newTestLoader(t, dir)

	var res LoadResult
	require.NotPanics(t, func() {
		var err error
		res, err = l.LoadAll()
		require.NoError(t, err)
	})

	assert.Equal(t, 1, res.Loaded)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "broken", res.Failures[0].Name)
	assert.Equal(t, filepath.Join(dir, "broken.path"), res.Failures[0].File)
	assert.ErrorIs(t, res.Failures[0].Err, waypoint.ErrTruncated)

	got, ok := reg.Get("good")
	require.True(t, ok)
	assert.Equal(t, valid, got)
	_, ok = reg.Get("broken")
	assert.False(t, ok)

	assert.Contains(t, logs.String(), "path could not be loaded")
}

func TestLoader_LoadAll_EmptyFileSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.path"), nil, 0600))

	l, reg, _ := newTestLoader(t, dir)
	res, err := l.LoadAll()
	require.NoError(t, err)

	assert.Zero(t, res.Loaded)
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, ErrEmptyPath)
	assert.Zero(t, reg.Len())
}

func TestLoader_LoadAll_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	traj := waypoint.Trajectory{{World: "w", X: 1}}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.path"), encode(t, traj), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.path.tmp"), []byte{0}, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0600))

	l, reg, _ := newTestLoader(t, dir)
	res, err := l.LoadAll()
	require.NoError(t, err)

	assert.Equal(t, 1, res.Loaded)
	assert.Empty(t, res.Failures)
	assert.Equal(t, []string{"a"}, reg.Names())
}

func TestLoader_Reload_Overwrites(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	l, reg, _ := newTestLoader(t, dir)

	require.NoError(t, s.Write("p", encode(t, waypoint.Trajectory{{World: "old"}})))
	require.NoError(t, l.Reload("p"))
	require.NoError(t, s.Write("p", encode(t, waypoint.Trajectory{{World: "new"}, {World: "new", X: 1}})))
	require.NoError(t, l.Reload("p"))

	got, ok := reg.Get("p")
	require.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, "new", got[0].World)
}
