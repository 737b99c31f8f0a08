// Package watch re-ingests the source directory when its PDF files
// change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driving"
	"github.com/halcyon-labs/askdoc/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last relevant
// event before triggering a re-ingest. Editors and download managers
// emit bursts of writes; one ingest per burst is enough.
const DefaultDebounce = 2 * time.Second

// Watcher triggers ingest passes in response to filesystem changes.
type Watcher struct {
	dir      string
	ingest   driving.IngestService
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher over the given source directory.
func New(dir string, ingest driving.IngestService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		ingest:   ingest,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until ctx is cancelled. Each burst of PDF
// changes triggers one ingest pass; ingest failures are logged and
// watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for changes", w.dir)

	// The timer starts stopped; relevant events re-arm it.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("Change detected: %s %s", event.Op, filepath.Base(event.Name))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			logger.Info("Source directory changed, re-ingesting")
			if _, err := w.ingest.Ingest(ctx); err != nil {
				if errors.Is(err, domain.ErrIngestInProgress) {
					// An ingest is already running; the next burst
					// will pick up these changes.
					timer.Reset(w.debounce)
					continue
				}
				logger.Error("Re-ingest failed: %v", err)
			}
		}
	}
}

// relevant reports whether the event should trigger a re-ingest. Only
// content changes to PDF files count; chmod noise is ignored.
func relevant(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
		return false
	}
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}
