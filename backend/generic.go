package backend

import (
	"context"
	"time"

	"github.com/marcus-crane/tunestatus/mediakey"
)

// GenericAdapter drives whatever app currently owns the media keys. It
// cannot be queried.
type GenericAdapter struct {
	press func(mediakey.Key) error
}

func NewGeneric() *GenericAdapter {
	return &GenericAdapter{press: mediakey.Press}
}

func (g *GenericAdapter) Kind() Kind {
	return Generic
}

func (g *GenericAdapter) IsRunning(context.Context) bool {
	return false
}

func (g *GenericAdapter) CurrentState(context.Context) (PlayerSnapshot, error) {
	return PlayerSnapshot{}, ErrUnsupported
}

func (g *GenericAdapter) CurrentPosition(context.Context) time.Duration {
	return 0
}

func (g *GenericAdapter) FetchArtwork(context.Context) ([]byte, error) {
	return nil, ErrUnsupported
}

func (g *GenericAdapter) PlayPause(context.Context) error {
	return g.press(mediakey.PlayPause)
}

func (g *GenericAdapter) Next(context.Context) error {
	return g.press(mediakey.Next)
}

func (g *GenericAdapter) Previous(context.Context) error {
	return g.press(mediakey.Previous)
}

func (g *GenericAdapter) Activate(context.Context) error {
	return ErrUnsupported
}

func (g *GenericAdapter) SetVolume(context.Context, int) error {
	return ErrUnsupported
}
