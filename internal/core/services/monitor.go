package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/logger"
)

// defaultDebounce coalesces bursts of file events, such as an editor's save.
const defaultDebounce = 500 * time.Millisecond

// CorpusMonitor reacts to corpus and prompt edits while the process runs.
// Handlers run once per changed path after events settle.
type CorpusMonitor struct {
	watcher  driven.CorpusWatcher
	debounce time.Duration

	mu       sync.Mutex
	handlers []func(path string)
	running  bool
	stopCh   chan struct{}
}

// NewCorpusMonitor creates a monitor over the watcher.
func NewCorpusMonitor(watcher driven.CorpusWatcher) *CorpusMonitor {
	return &CorpusMonitor{
		watcher:  watcher,
		debounce: defaultDebounce,
	}
}

// SetDebounce sets how long events must be quiet before handlers run.
func (m *CorpusMonitor) SetDebounce(d time.Duration) {
	m.debounce = d
}

// OnChange registers a handler for changed paths.
func (m *CorpusMonitor) OnChange(fn func(path string)) {
	m.mu.Lock()
	m.handlers = append(m.handlers, fn)
	m.mu.Unlock()
}

// Start watches until the context is cancelled or Stop is called. It blocks.
func (m *CorpusMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.stopCh == stopCh {
			m.running = false
		}
		m.mu.Unlock()
	}()

	events, err := m.watcher.Watch(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.watcher.Stop(); err != nil {
			logger.Warn("Failed to stop corpus watcher: %v", err)
		}
	}()

	return m.run(ctx, events, stopCh)
}

// Stop ends a running monitor.
func (m *CorpusMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.stopCh)
}

func (m *CorpusMonitor) run(ctx context.Context, events <-chan string, stopCh <-chan struct{}) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(m.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case path, ok := <-events:
			if !ok {
				m.flush(pending)
				return nil
			}
			pending[path] = struct{}{}
			timer.Reset(m.debounce)
		case <-timer.C:
			m.flush(pending)
		}
	}
}

// flush runs handlers for every pending path and clears the set.
func (m *CorpusMonitor) flush(pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	m.mu.Lock()
	handlers := append([]func(string){}, m.handlers...)
	m.mu.Unlock()

	for path := range pending {
		logger.Debug("Corpus changed: %s", path)
		for _, fn := range handlers {
			fn(path)
		}
		delete(pending, path)
	}
}
