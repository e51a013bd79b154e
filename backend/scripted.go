package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marcus-crane/tunestatus/scripting"
)

const stateScript = `tell application %q
	set s to player state as text
	if s is "stopped" then return s
	set t to current track
	return s & linefeed & (name of t) & linefeed & (artist of t) & linefeed & (album of t) & linefeed & ((duration of t) as text) & linefeed & ((player position) as text)
end tell`

// scriptedApp holds the behaviour Music and Spotify share. durationUnit is
// the unit the app reports track durations in.
type scriptedApp struct {
	app          string
	runner       scripting.Runner
	durationUnit time.Duration
}

func (s scriptedApp) phrase(ctx context.Context, phrase string) (string, error) {
	return s.runner.Run(ctx, scripting.Phrase(s.app, phrase))
}

func (s scriptedApp) fire(ctx context.Context, phrase string) error {
	_, err := s.phrase(ctx, phrase)
	return err
}

func (s scriptedApp) IsRunning(ctx context.Context) bool {
	return scripting.IsRunning(ctx, s.runner, s.app)
}

func (s scriptedApp) CurrentState(ctx context.Context) (PlayerSnapshot, error) {
	if !s.IsRunning(ctx) {
		return PlayerSnapshot{}, ErrNotRunning
	}
	out, err := s.runner.Run(ctx, scripting.Script(fmt.Sprintf(stateScript, s.app)))
	if err != nil {
		return PlayerSnapshot{}, fmt.Errorf("failed to query %s: %w", s.app, err)
	}
	return parseState(out, s.durationUnit), nil
}

func parseState(out string, durationUnit time.Duration) PlayerSnapshot {
	lines := strings.Split(out, "\n")
	snapshot := PlayerSnapshot{State: normaliseState(lines[0])}
	if len(lines) < 6 {
		return snapshot
	}
	snapshot.Name = lines[1]
	snapshot.Artist = lines[2]
	snapshot.Album = lines[3]
	snapshot.Duration, _ = parseAmount(lines[4], durationUnit)
	snapshot.Position, _ = parseAmount(lines[5], time.Second)
	return snapshot
}

func (s scriptedApp) PlayPause(ctx context.Context) error {
	return s.fire(ctx, "playpause")
}

func (s scriptedApp) Next(ctx context.Context) error {
	return s.fire(ctx, "next track")
}

func (s scriptedApp) Previous(ctx context.Context) error {
	return s.fire(ctx, "previous track")
}

func (s scriptedApp) Activate(ctx context.Context) error {
	return s.fire(ctx, "activate")
}

func (s scriptedApp) SetVolume(ctx context.Context, level int) error {
	return s.fire(ctx, fmt.Sprintf("set sound volume to %d", clampVolume(level)))
}
