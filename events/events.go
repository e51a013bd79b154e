// Package events streams now playing updates to browsers over server-sent
// events.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/r3labs/sse/v2"

	"github.com/marcus-crane/tunestatus/playback"
	"github.com/marcus-crane/tunestatus/shared"
)

type Sessions struct {
	SessionsSeen   int64 `json:"sessions_seen"`
	ActiveSessions int64 `json:"active_sessions"`
}

type Broker struct {
	server *sse.Server
	seen   atomic.Int64
	active atomic.Int64
}

// New returns a broker with the playback stream already created. Late
// subscribers are not replayed old entries; the next tick brings them up to
// date within a second.
func New() *Broker {
	b := &Broker{server: sse.New()}
	b.server.AutoReplay = false
	b.server.OnSubscribe = func(streamID string, sub *sse.Subscriber) {
		b.seen.Add(1)
		b.active.Add(1)
	}
	b.server.OnUnsubscribe = func(streamID string, sub *sse.Subscriber) {
		b.active.Add(-1)
	}
	b.server.CreateStream(shared.STREAM_PLAYBACK)
	return b
}

func (b *Broker) Publish(e playback.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	b.server.Publish(shared.STREAM_PLAYBACK, &sse.Event{Data: data})
	return nil
}

func (b *Broker) Run(ctx context.Context, entries <-chan playback.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			if err := b.Publish(e); err != nil {
				slog.Warn("Failed to publish playback event", slog.String("error", err.Error()))
			}
		}
	}
}

func (b *Broker) Sessions() Sessions {
	return Sessions{SessionsSeen: b.seen.Load(), ActiveSessions: b.active.Load()}
}

func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.server.ServeHTTP(w, r)
}

func (b *Broker) Close() {
	b.server.Close()
}
