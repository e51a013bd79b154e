package backend

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/marcus-crane/tunestatus/scripting"
	"github.com/marcus-crane/tunestatus/shared"
)

const musicPositionScript = `try
	tell application "Music" to set T to player position
	set H to T div 3600
	set S to T mod 3600
	set M to S div 60
	set S to S mod 60
	if M < 10 then set M to "0" & M
	if S < 10 then set S to "0" & S
	set T to (H as text) & ":" & M & ":" & S
on error
	set T to "No song playing"
end try
return T`

// Music artwork is raw image data which osascript cannot print, so the
// script writes it out to a file we hand it.
const musicArtworkScript = `tell application "Music"
	if not (exists artwork 1 of current track) then return "none"
	set artData to raw data of artwork 1 of current track
end tell
set f to open for access (POSIX file %q) with write permission
try
	set eof f to 0
	write artData to f
	close access f
on error errMsg
	close access f
	error errMsg
end try
return "ok"`

type MusicAdapter struct {
	scriptedApp
}

func NewMusic(runner scripting.Runner) *MusicAdapter {
	return &MusicAdapter{scriptedApp{
		app:          shared.APP_MUSIC,
		runner:       runner,
		durationUnit: time.Second,
	}}
}

func (m *MusicAdapter) Kind() Kind {
	return Music
}

func (m *MusicAdapter) CurrentPosition(ctx context.Context) time.Duration {
	return ParseTimestamp(scripting.RunString(ctx, m.runner, scripting.Script(musicPositionScript)))
}

func (m *MusicAdapter) FetchArtwork(ctx context.Context) ([]byte, error) {
	f, err := os.CreateTemp("", "tunestatus-artwork-*")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	out, err := m.runner.Run(ctx, scripting.Script(fmt.Sprintf(musicArtworkScript, path)))
	if err != nil {
		return nil, fmt.Errorf("failed to export artwork: %w", err)
	}
	if out != "ok" {
		return nil, ErrNoArtwork
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, ErrNoArtwork
	}
	return b, nil
}
