// Package watcher re-runs the reference check when the exception list or the
// documentation sources change on disk.
package watcher

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches a set of paths and invokes the callback after changes
// settle. Rapid save bursts are debounced into a single invocation.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	paths       []string
	debounceDur time.Duration
	onChange    func(context.Context)
	logger      *zap.Logger
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity for debugging and tests.
type Stats struct {
	EventsSeen      int
	ChecksTriggered int
	Errors          int
	LastEventPath   string
	LastEventTime   time.Time
}

// New builds a Watcher over the given paths (files or directories).
// onChange runs on the watcher goroutine; it should honor ctx.
func New(paths []string, onChange func(context.Context), logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:     fsw,
		paths:       paths,
		debounceDur: 500 * time.Millisecond,
		onChange:    onChange,
		logger:      logger,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine
// until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, path := range w.paths {
		if _, err := os.Stat(path); err != nil {
			w.logger.Warn("watch path missing, skipping", zap.String("path", path))
			continue
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch path", zap.String("path", path), zap.Error(err))
			continue
		}
		w.logger.Debug("watching", zap.String("path", path))
	}

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	// The timer stays stopped until an event arrives; every further event
	// inside the debounce window pushes the deadline out again.
	debounce := time.NewTimer(w.debounceDur)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.mu.Lock()
			w.stats.EventsSeen++
			w.stats.LastEventPath = event.Name
			w.stats.LastEventTime = time.Now()
			w.mu.Unlock()
			w.logger.Debug("fs event", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(w.debounceDur)
		case <-debounce.C:
			w.mu.Lock()
			w.stats.ChecksTriggered++
			w.mu.Unlock()
			w.onChange(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}

// Stop shuts the watcher down and waits for the event loop to exit.
// Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.watcher.Close()
	<-w.doneCh
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}
