package gate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts watching the schema directory and config paths, rechecking
// every config file after changes settle. onResult receives one Result per
// config file per recheck. Watch returns once the watcher is running;
// watching stops when ctx is cancelled or StopWatching is called.
func (g *Gate) Watch(ctx context.Context, onResult func(Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watchPath(watcher, g.cfg.SchemaDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch schema dir: %w", err)
	}
	for _, p := range g.cfg.ConfigPaths {
		if err := watchPath(watcher, p); err != nil {
			g.logger.WithError(err).Warnf("Not watching config path %s", p)
		}
	}

	g.mu.Lock()
	g.watcher = watcher
	g.mu.Unlock()

	go g.processEvents(ctx, watcher, onResult)

	g.logger.Infof("Watching %s and %d config paths", g.cfg.SchemaDir, len(g.cfg.ConfigPaths))
	return nil
}

// StopWatching closes the filesystem watcher. Safe to call when watching
// never started.
func (g *Gate) StopWatching() {
	g.mu.Lock()
	watcher := g.watcher
	g.watcher = nil
	g.mu.Unlock()
	if watcher != nil {
		watcher.Close()
	}
}

func (g *Gate) processEvents(ctx context.Context, watcher *fsnotify.Watcher, onResult func(Result)) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			watcher.Close()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !documentExtensions[filepath.Ext(event.Name)] {
				continue
			}
			g.logger.Debugf("Change %s on %s", event.Op, event.Name)
			g.tel.Metrics.RecordWatchEvent(event.Op.String())
			g.tel.Events.PublishWatchTriggered(event.Name, event.Op.String())

			// Editors fire bursts of events per save; recheck once the
			// burst settles.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(g.cfg.Watch.Debounce(), func() {
				g.recheck(ctx, onResult)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			g.logger.WithError(err).Error("Watcher error")
		}
	}
}

// recheck reloads the schema set and checks every config file. A failed
// reload keeps the previous schema set, so configs are still checked
// against the last good schemas.
func (g *Gate) recheck(ctx context.Context, onResult func(Result)) {
	if err := g.Reload(ctx); err != nil {
		g.logger.WithError(err).Error("Reload failed, keeping previous schema set")
	}

	results, err := g.CheckAll(ctx)
	if err != nil {
		g.logger.WithError(err).Error("Recheck failed")
		return
	}
	for _, result := range results {
		onResult(result)
	}
}

// watchPath adds a file or directory tree to the watcher.
func watchPath(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
}
