// Package watcher keeps the sketch in step with a file on disk.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"cloudsketch/internal/domain"
	"cloudsketch/internal/loader"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce collapses bursts of writes from editors
const DefaultDebounce = 500 * time.Millisecond

// Sink receives every successfully parsed version of the file
type Sink interface {
	LoadGraph(ctx context.Context, g *domain.Graph)
}

// Watcher watches a file for changes
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
}

// New creates a new file watcher
func New(path string, onChange func()) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Watch starts watching the file for changes
// It blocks until the context is cancelled or an error occurs
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory containing the file
	// This handles cases where the file is replaced (e.g., by editors)
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)

	if err := watcher.Add(dir); err != nil {
		return err
	}

	log.Info().Str("path", w.path).Msg("Watching for changes")

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
	)
	defer func() {
		mu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Check if this event is for our file
			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				log.Debug().Str("path", w.path).Msg("File changed")
				w.onChange()
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("path", w.path).Msg("Watcher error")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Sync loads path into sink once, then again after every change, until ctx
// is done. Files that fail to parse are logged and the sink keeps its
// current sketch.
func Sync(ctx context.Context, path string, sink Sink, debounce time.Duration) error {
	reload := func() {
		g, err := loader.LoadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Ignoring unreadable sketch file")
			return
		}
		sink.LoadGraph(ctx, g)
		log.Info().
			Str("path", path).
			Int("nodes", len(g.Nodes)).
			Int("edges", len(g.Edges)).
			Msg("Sketch reloaded from file")
	}

	reload()
	return New(path, reload).WithDebounce(debounce).Watch(ctx)
}
