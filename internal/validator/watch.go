package validator

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watch validates root once, then again after every settled burst of file
// system changes below it, passing each outcome to onResult. It blocks
// until ctx is done.
func Watch(ctx context.Context, root string, debounce time.Duration, onResult func(*Report, error), opts ...Option) error {
	logger := newValidation(root, opts).logger

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := addTree(w, root); err != nil {
		return err
	}

	onResult(Run(ctx, root, opts...))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			logger.Debug("catalog change", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if ev.Has(fsnotify.Create) {
				// New directories need their own watch; fsnotify is not recursive.
				if err := addTree(w, ev.Name); err != nil {
					logger.Warn("watch new path", zap.String("path", ev.Name), zap.Error(err))
				}
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			onResult(Run(ctx, root, opts...))
		}
	}
}

// addTree adds p and every directory below it to w. Plain files are ignored.
func addTree(w *fsnotify.Watcher, p string) error {
	return filepath.WalkDir(p, func(sub string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(sub); err != nil {
			return fmt.Errorf("watch %s: %w", sub, err)
		}
		return nil
	})
}
