package notify

import (
	"context"
	"errors"
	"log/slog"
)

var ErrUnsupported = errors.New("distributed notifications are only available on macOS")

// Distributed forwards app broadcasts to a channel.
type Distributed struct {
	ctx context.Context
	out chan<- Notification
}

func NewDistributed(out chan<- Notification) *Distributed {
	return &Distributed{ctx: context.Background(), out: out}
}

func (d *Distributed) deliver(name string, payload []byte) {
	kind, ok := KindForName(name)
	if !ok {
		slog.Debug("Ignoring unknown notification", slog.String("name", name))
		return
	}
	n, err := FromPayload(kind, payload)
	if err != nil {
		slog.Warn("Dropping notification", slog.String("error", err.Error()))
		return
	}
	select {
	case d.out <- n:
	case <-d.ctx.Done():
	}
}
