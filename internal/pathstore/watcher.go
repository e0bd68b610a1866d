package pathstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-registers trajectory files that are created or rewritten in
// the store directory after startup.
type Watcher struct {
	watcher *fsnotify.Watcher
	loader  *Loader
	logger  *slog.Logger

	// onReload, when set, is called after every reload attempt.
	onReload func(name string, err error)
}

// NewWatcher starts watching the loader's store directory. The directory
// must already exist; call Loader.LoadAll first.
func NewWatcher(loader *Loader) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(loader.store.Dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", loader.store.Dir, err)
	}
	return &Watcher{
		watcher: w,
		loader:  loader,
		logger:  loader.logger,
	}, nil
}

// Run handles file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	w.logger.Info("watching paths directory", "dir", w.loader.store.Dir)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, ok := NameOf(event.Name)
			if !ok {
				continue
			}
			w.logger.Debug("path file changed", "file", event.Name, "op", event.Op.String())
			err := w.loader.Reload(name)
			if w.onReload != nil {
				w.onReload(name, err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("paths watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
