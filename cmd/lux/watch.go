package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// watch runs p, then re-runs it each time one of its files is written,
// until ctx is cancelled. The exit code is that of the last run.
func (c *cli) watch(ctx context.Context, p *plan) int {
	files := append(append([]string(nil), p.preload...), p.entry)
	code := c.execute(p)
	err := watchFiles(ctx, files, func(changed string) {
		fmt.Fprintf(c.stderr, "[WATCH] %s changed, re-running\n", changed)
		code = c.execute(p)
	})
	if err != nil {
		fmt.Fprintf(c.stderr, "watch: %v\n", err)
		return exitFailure
	}
	return code
}

// watchFiles calls onChange for writes to any of files. Directories are
// watched instead of the files so editors that replace files on save keep
// being seen. Events closer together than watchDebounce are merged.
func watchFiles(ctx context.Context, files []string, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	wanted := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !wanted[name] {
				continue
			}
			pending = name
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange(pending)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
