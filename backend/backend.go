// Package backend adapts the media apps TuneStatus knows how to talk to
// behind a single Adapter interface.
package backend

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/marcus-crane/tunestatus/shared"
)

type Kind int

const (
	Generic Kind = iota
	Music
	Spotify
)

var (
	ErrNoArtwork   = errors.New("no artwork for current track")
	ErrUnsupported = errors.New("operation not supported by backend")
	ErrNotRunning  = errors.New("backend app is not running")
)

// String returns the tag used when persisting the active backend.
func (k Kind) String() string {
	switch k {
	case Music:
		return "Music"
	case Spotify:
		return "Spotify"
	}
	return "generic"
}

// ParseKind maps a persisted tag back to a Kind. Anything unrecognised is
// treated as generic.
func ParseKind(tag string) Kind {
	switch tag {
	case "Music":
		return Music
	case "Spotify":
		return Spotify
	}
	return Generic
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

// PlayerSnapshot is what an app reports when asked directly.
type PlayerSnapshot struct {
	Name     string
	Artist   string
	Album    string
	State    string
	Duration time.Duration
	Position time.Duration
}

func (p PlayerSnapshot) IsPlaying() bool {
	return p.State == shared.PLAYER_STATE_PLAYING
}

type Adapter interface {
	Kind() Kind
	IsRunning(ctx context.Context) bool
	CurrentState(ctx context.Context) (PlayerSnapshot, error)
	CurrentPosition(ctx context.Context) time.Duration
	FetchArtwork(ctx context.Context) ([]byte, error)
	PlayPause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Activate(ctx context.Context) error
	SetVolume(ctx context.Context, level int) error
}

// Set holds one adapter per Kind.
type Set map[Kind]Adapter

func (s Set) For(k Kind) Adapter {
	if a, ok := s[k]; ok {
		return a
	}
	return s[Generic]
}

// Scripted returns the adapters that can be queried, in a stable order.
func (s Set) Scripted() []Adapter {
	var out []Adapter
	for _, k := range []Kind{Music, Spotify} {
		if a, ok := s[k]; ok {
			out = append(out, a)
		}
	}
	return out
}

func clampVolume(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// normaliseState maps AppleScript player states onto the values used by
// distributed notifications.
func normaliseState(state string) string {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "playing":
		return shared.PLAYER_STATE_PLAYING
	case "paused":
		return shared.PLAYER_STATE_PAUSED
	}
	return shared.PLAYER_STATE_STOPPED
}

// parseAmount reads an AppleScript number expressed in unit. Reals use the
// locale's decimal separator.
func parseAmount(s string, unit time.Duration) (time.Duration, bool) {
	f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return time.Duration(f * float64(unit)), true
}
