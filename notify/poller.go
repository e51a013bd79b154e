package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/marcus-crane/tunestatus/backend"
)

// Poller asks each app for its state and emits a Notification when the
// track or player state differs from what it saw last time. It covers
// broadcasts that were missed, such as ones sent before we started.
type Poller struct {
	adapters []backend.Adapter
	out      chan<- Notification

	mu   sync.Mutex
	last map[backend.Kind]backend.PlayerSnapshot
}

func NewPoller(adapters []backend.Adapter, out chan<- Notification) *Poller {
	return &Poller{
		adapters: adapters,
		out:      out,
		last:     map[backend.Kind]backend.PlayerSnapshot{},
	}
}

// Poll runs one pass over every adapter. It is safe to call concurrently
// but passes are serialized.
//
// Playing apps are emitted last so one of them ends up active. An app that
// was not playing and still is not is kept quiet while another app plays,
// so opening a paused player never takes over.
func (p *Poller) Poll(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var idle, playing []Notification
	changed := map[backend.Kind]bool{}
	for _, a := range p.adapters {
		state, err := a.CurrentState(ctx)
		if err != nil {
			if !errors.Is(err, backend.ErrNotRunning) {
				slog.Debug("Failed to poll backend",
					slog.String("backend", a.Kind().String()),
					slog.String("error", err.Error()))
			}
			delete(p.last, a.Kind())
			continue
		}

		prev, seen := p.last[a.Kind()]
		if seen && samePlayback(prev, state) {
			continue
		}
		p.last[a.Kind()] = state
		changed[a.Kind()] = true

		slog.Debug("Polled backend changed",
			slog.String("backend", a.Kind().String()),
			slog.String("state", state.State),
			slog.String("track", state.Name))

		n := FromPlayerSnapshot(a.Kind(), state)
		switch {
		case state.IsPlaying():
			playing = append(playing, n)
		case prev.IsPlaying() || !p.otherPlaying(a.Kind()):
			idle = append(idle, n)
		default:
			slog.Debug("Not emitting idle backend while another is playing",
				slog.String("backend", a.Kind().String()))
		}
	}

	// an idle app that was playing may have just become active, so hand
	// control back to whichever app is still playing
	if len(idle) > 0 {
		for _, a := range p.adapters {
			if state, ok := p.last[a.Kind()]; ok && state.IsPlaying() && !changed[a.Kind()] {
				playing = append(playing, FromPlayerSnapshot(a.Kind(), state))
			}
		}
	}

	for _, n := range append(idle, playing...) {
		select {
		case p.out <- n:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) otherPlaying(kind backend.Kind) bool {
	for k, state := range p.last {
		if k != kind && state.IsPlaying() {
			return true
		}
	}
	return false
}

// position moves every second so it is not part of the comparison
func samePlayback(a, b backend.PlayerSnapshot) bool {
	return a.Name == b.Name &&
		a.Artist == b.Artist &&
		a.Album == b.Album &&
		a.State == b.State &&
		a.Duration == b.Duration
}
