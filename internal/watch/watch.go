// Package watch triggers rebuilds when files under the working tree's content directory change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const (
	DefaultDebounce = 2 * time.Second
	watchTrigger    = "watch"
)

// Trigger starts a rebuild without waiting for it.
type Trigger func(trigger string)

type Watcher struct {
	root     string
	debounce time.Duration
	trigger  Trigger
}

func New(root string, debounce time.Duration, trigger Trigger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		trigger:  trigger,
	}
}

// Run watches root and every directory below it until ctx is done. A burst of
// changes within the debounce window produces a single trigger.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dirs, err := walkDirs(w.root)
	if err != nil {
		return fmt.Errorf("walk %s: %w", w.root, err)
	}
	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			log.Warn().Err(err).Str("dir", d).Msg("Could not watch directory")
		}
	}
	log.Info().Int("dirs", len(dirs)).Str("root", w.root).Msg("Watching content for changes")

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	schedule := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			if ctx.Err() != nil {
				return
			}
			log.Info().Str("file", name).Msg("Content changed")
			w.trigger(watchTrigger)
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.Add(event.Name); err != nil {
						log.Warn().Err(err).Str("dir", event.Name).Msg("Could not watch directory")
					}
					continue
				}
			}

			if !relevant(event) {
				continue
			}
			schedule(event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watch error")
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".html", ".json":
		return true
	}
	return event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func walkDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}
