package engine

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dejo1307/fieldparity/internal/facts"
)

// Watch runs Check once and again after every debounced batch of changes
// under either schema root, until ctx is done. onReport receives every
// result, including errors from individual runs; only watcher failures end
// the loop with an error.
func (e *Engine) Watch(ctx context.Context, resources []string, onReport func(*facts.Report, error)) error {
	onReport(e.Check(ctx, resources))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, root := range []string{e.resolver.SchemaARoot(), e.resolver.SchemaBRoot()} {
		if err := addWatchRecursive(watcher, root); err != nil {
			return err
		}
	}

	return watchLoop(ctx, watcher, e.cfg.Watch.Debounce, func(changed int) {
		log.Printf("[engine] %d paths changed, re-checking", changed)
		onReport(e.Check(ctx, resources))
	})
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, onChange func(changed int)) error {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, event.Name)
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending[filepath.Clean(event.Name)] = true
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) > 0 {
				n := len(pending)
				pending = map[string]bool{}
				onChange(n)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

// addWatchRecursive watches root and every directory below it. A missing
// root is skipped: the Schema-B root may not exist yet.
func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		log.Printf("[engine] not watching %s: %v", root, err)
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
