package playback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus-crane/tunestatus/backend"
	"github.com/marcus-crane/tunestatus/notify"
)

const (
	BootstrapQuery  = "query"
	BootstrapToggle = "toggle"
	BootstrapNone   = "none"
)

// Bootstrap fills in the entry at startup, before any app has broadcast.
// Run must already be going.
//
// query asks each running app for its state and feeds the answers in, a
// playing app last so it ends up active. toggle presses play/pause twice
// so the owning app broadcasts its state, at the cost of a blip in the
// audio.
func (a *Aggregator) Bootstrap(ctx context.Context, mode string, delay time.Duration) error {
	select {
	case <-a.running:
	case <-ctx.Done():
		return ctx.Err()
	}

	switch mode {
	case BootstrapNone, "":
		return nil
	case BootstrapToggle:
		return a.bootstrapToggle(ctx, delay)
	case BootstrapQuery:
		return a.bootstrapQuery(ctx)
	}
	return fmt.Errorf("unknown bootstrap mode %q", mode)
}

func (a *Aggregator) bootstrapQuery(ctx context.Context) error {
	var idle, playing []notify.Notification
	for _, adapter := range a.adapters.Scripted() {
		state, err := adapter.CurrentState(ctx)
		if err != nil {
			slog.Debug("Skipping backend during bootstrap",
				slog.String("backend", adapter.Kind().String()),
				slog.String("error", err.Error()))
			continue
		}
		n := notify.FromPlayerSnapshot(adapter.Kind(), state)
		if state.IsPlaying() {
			playing = append(playing, n)
		} else if n.Name != nil {
			idle = append(idle, n)
		}
	}

	for _, n := range append(idle, playing...) {
		if err := a.Inject(ctx, n); err != nil {
			return err
		}
	}
	slog.Info("Bootstrapped playback state", slog.Int("sources", len(idle)+len(playing)))
	return nil
}

func (a *Aggregator) bootstrapToggle(ctx context.Context, delay time.Duration) error {
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	generic := a.adapters.For(backend.Generic)
	for i := 0; i < 2; i++ {
		if err := generic.PlayPause(ctx); err != nil {
			return fmt.Errorf("failed to toggle playback: %w", err)
		}
	}
	return nil
}
