package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scsm/pkg/logging"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher rebuilds the index when descriptor files change on disk.
type Watcher struct {
	index    *Index
	debounce time.Duration
	onUpdate func(error)

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for idx. onUpdate, when non-nil, is called
// after every rebuild with its result.
func NewWatcher(idx *Index, debounce time.Duration, onUpdate func(error)) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{index: idx, debounce: debounce, onUpdate: onUpdate}
}

// Run watches the descriptor directories until ctx is cancelled.
// Directories that do not exist yet are created so edits to them are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range w.index.DescriptorDirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logging.Debug(subsystem, "watching %s", dir)
	}

	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !isDescriptorEvent(event) {
				continue
			}
			logging.Debug(subsystem, "descriptor changed: %s (%s)", event.Name, event.Op)
			w.schedule()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Error(subsystem, err, "descriptor watcher error")
		}
	}
}

// schedule coalesces bursts of events into one rebuild.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		err := w.index.Update()
		if err != nil {
			logging.Error(subsystem, err, "failed to rebuild index")
		} else {
			logging.Info(subsystem, "index rebuilt after descriptor change")
		}
		if w.onUpdate != nil {
			w.onUpdate(err)
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func isDescriptorEvent(event fsnotify.Event) bool {
	if strings.ToLower(filepath.Ext(event.Name)) != ".yaml" {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
