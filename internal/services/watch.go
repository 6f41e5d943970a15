package services

import (
	"context"
	"fmt"
	"time"

	"github.com/conneroisu/iconward/internal/watcher"
)

// ChangeFunc is called after each debounced batch of changes.
type ChangeFunc func(ctx context.Context, events []watcher.ChangeEvent)

// WatchService observes the custom icon directory.
type WatchService struct {
	container *Container
	debounce  time.Duration
}

// NewWatchService creates a watch service. A zero debounce uses the
// watcher default.
func NewWatchService(c *Container, debounce time.Duration) *WatchService {
	return &WatchService{container: c, debounce: debounce}
}

// Watch blocks until ctx is cancelled, calling onChange for every batch of
// changes to the icon directory. The directory may not exist yet.
func (w *WatchService) Watch(ctx context.Context, onChange ChangeFunc) error {
	dir := w.container.IconDir()
	if dir == "" {
		return fmt.Errorf("uploads.base_dir is not configured")
	}

	fw, err := watcher.NewFileWatcher(w.debounce, w.container.Logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	watched, err := fw.WatchIconDir(dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.DirFilter(dir))
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		// The directory may have been created or recreated since the last
		// batch; adding an existing watch is a no-op.
		if _, err := fw.WatchIconDir(dir); err != nil {
			w.container.Logger.Warn(ctx, err, "Cannot watch icon directory", "dir", dir)
		}
		onChange(ctx, events)
		return nil
	})

	w.container.Logger.Info(ctx, "Watching custom icons", "dir", dir, "watched", watched)
	if err := fw.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
