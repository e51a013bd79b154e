//go:build !darwin

package notify

import "context"

func (d *Distributed) Start(context.Context) error {
	return ErrUnsupported
}

func RunMainLoop(ctx context.Context) {
	<-ctx.Done()
}
