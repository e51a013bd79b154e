package playback

import (
	"context"
	"log/slog"

	"github.com/marcus-crane/tunestatus/backend"
)

// Controls go to the adapter of the active backend, or to the media keys
// while nothing has been heard from an app yet. Failures are returned for
// logging but change nothing.

func (a *Aggregator) PlayPause(ctx context.Context) error {
	return a.dispatch(ctx, "playpause", func(ad backend.Adapter) error {
		return ad.PlayPause(ctx)
	})
}

func (a *Aggregator) Next(ctx context.Context) error {
	return a.dispatch(ctx, "next", func(ad backend.Adapter) error {
		return ad.Next(ctx)
	})
}

// Previous rewinds the clock straight away rather than waiting for the app
// to report back.
func (a *Aggregator) Previous(ctx context.Context) error {
	if err := a.do(ctx, func(context.Context) {
		a.entry.Position = 0
		a.publish()
	}); err != nil {
		return err
	}
	return a.dispatch(ctx, "previous", func(ad backend.Adapter) error {
		return ad.Previous(ctx)
	})
}

func (a *Aggregator) Activate(ctx context.Context) error {
	return a.dispatch(ctx, "activate", func(ad backend.Adapter) error {
		return ad.Activate(ctx)
	})
}

func (a *Aggregator) SetVolume(ctx context.Context, level int) error {
	return a.dispatch(ctx, "volume", func(ad backend.Adapter) error {
		return ad.SetVolume(ctx, level)
	})
}

// Active returns the backend that last sent a notification.
func (a *Aggregator) Active() backend.Kind {
	return a.Current().Source
}

func (a *Aggregator) dispatch(ctx context.Context, command string, fn func(backend.Adapter) error) error {
	adapter := a.adapters.For(a.Active())
	err := fn(adapter)
	if err != nil {
		slog.Debug("Control command failed",
			slog.String("command", command),
			slog.String("backend", adapter.Kind().String()),
			slog.String("error", err.Error()))
	}
	return err
}
