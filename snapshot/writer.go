package snapshot

import (
	"context"
	"log/slog"
	"sync"

	"github.com/marcus-crane/tunestatus/playback"
)

// Writer persists snapshots off the caller's goroutine. Submissions made
// while a write is in flight collapse into the newest one.
type Writer struct {
	store *Store

	mu      sync.Mutex
	pending *Snapshot
	wake    chan struct{}
	written chan struct{}
}

func NewWriter(store *Store) *Writer {
	return &Writer{
		store:   store,
		wake:    make(chan struct{}, 1),
		written: make(chan struct{}, 1),
	}
}

// Submit never blocks.
func (w *Writer) Submit(snap Snapshot) {
	w.mu.Lock()
	w.pending = &snap
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Observe is a playback publish hook.
func (w *Writer) Observe(e playback.Entry) {
	w.Submit(FromEntry(e))
}

// Run writes pending snapshots until ctx is done, flushing anything left
// over before returning.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return
		case <-w.wake:
			w.flush()
		}
	}
}

func (w *Writer) flush() {
	w.mu.Lock()
	snap := w.pending
	w.pending = nil
	w.mu.Unlock()

	if snap == nil {
		return
	}
	if err := w.store.Publish(*snap); err != nil {
		slog.Warn("Failed to write snapshot", slog.String("error", err.Error()))
		return
	}
	select {
	case w.written <- struct{}{}:
	default:
	}
}

// Written signals after each successful write.
func (w *Writer) Written() <-chan struct{} {
	return w.written
}
