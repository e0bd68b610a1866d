package pathstore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/npcpath/npcpath/internal/metrics"
	"github.com/npcpath/npcpath/internal/registry"
	"github.com/npcpath/npcpath/internal/waypoint"
)

// ErrEmptyPath is returned for a trajectory file that decodes to zero
// waypoints. Such files are valid encodings but are never registered.
var ErrEmptyPath = errors.New("path contains no waypoints")

// LoadFailure describes one trajectory file that could not be loaded.
type LoadFailure struct {
	Name string `json:"name"`
	File string `json:"file"`
	Err  error  `json:"-"`
}

// LoadResult summarizes a directory scan.
type LoadResult struct {
	Loaded   int           `json:"loaded"`
	Failures []LoadFailure `json:"failures,omitempty"`
}

// Loader reads trajectory files from a Store into a Registry.
type Loader struct {
	store    *Store
	registry *registry.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report skipped files.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithMetrics records load outcomes on m.
func WithMetrics(m *metrics.Metrics) LoaderOption {
	return func(l *Loader) {
		l.metrics = m
	}
}

// NewLoader returns a Loader for store and reg.
func NewLoader(store *Store, reg *registry.Registry, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:    store,
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll creates the directory if needed and registers every trajectory
// file in it. Files that cannot be read or decoded are logged and reported
// in the result; they never stop the scan.
func (l *Loader) LoadAll() (LoadResult, error) {
	var res LoadResult

	if err := l.store.EnsureDir(); err != nil {
		return res, err
	}
	names, err := l.store.List()
	if err != nil {
		return res, err
	}

	for _, name := range names {
		if err := l.Reload(name); err != nil {
			res.Failures = append(res.Failures, LoadFailure{
				Name: name,
				File: l.store.FilePath(name),
				Err:  err,
			})
			continue
		}
		res.Loaded++
	}

	l.logger.Info("paths loaded",
		"dir", l.store.Dir,
		"loaded", res.Loaded,
		"failed", len(res.Failures),
	)
	return res, nil
}

// Reload reads, decodes and registers the trajectory file for name.
func (l *Loader) Reload(name string) error {
	t, err := l.Load(name)
	if err != nil {
		l.logger.Warn("path could not be loaded",
			"name", name,
			"file", l.store.FilePath(name),
			"error", err,
		)
		l.metrics.PathLoadFailed()
		return err
	}

	l.registry.Put(name, t)
	l.metrics.PathLoaded(l.registry.Len())
	l.logger.Debug("path registered", "name", name, "waypoints", len(t))
	return nil
}

// Load reads and decodes the trajectory file for name without registering it.
func (l *Loader) Load(name string) (waypoint.Trajectory, error) {
	data, err := l.store.Read(name)
	if err != nil {
		return nil, err
	}
	t, err := waypoint.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode path: %w", err)
	}
	if len(t) == 0 {
		return nil, ErrEmptyPath
	}
	return t, nil
}
