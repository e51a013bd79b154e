package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/tunestatus/mediakey"
	"github.com/marcus-crane/tunestatus/scripting"
)

// fakeRunner answers scripts by substring match and records every source
// it was asked to run.
type fakeRunner struct {
	responses map[string]string
	failures  map[string]bool
	handle    func(source string) (string, error)
	ran       []string
}

func (f *fakeRunner) Run(_ context.Context, cmd scripting.Command) (string, error) {
	source := cmd.Source()
	f.ran = append(f.ran, source)
	if f.handle != nil {
		return f.handle(source)
	}
	for match := range f.failures {
		if strings.Contains(source, match) {
			return "", &scripting.ScriptError{Command: cmd, Err: errors.New("exit status 1")}
		}
	}
	for match, out := range f.responses {
		if strings.Contains(source, match) {
			return out, nil
		}
	}
	return "", nil
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		input string
		want  time.Duration
	}{
		{"0:03:45", 225 * time.Second},
		{"1:00:00,500", time.Hour},
		{"0:00:00", 0},
		{"bad", 0},
		{"03:45", 0},
		{"0:xx:45", 0},
		{"No song playing", 0},
		{"0:00:12.5", 12500 * time.Millisecond},
		{"NaN:00:00", 0},
		{"Inf:00:00", 0},
		{"0:00:+Inf", 0},
		{"-1:00:00", 0},
		{"0:-5:00", 0},
		{"0:00:NaN", 0},
		{"9999999999:00:00", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseTimestamp(tc.input))
		})
	}
}

func TestKind_Tags(t *testing.T) {
	for _, k := range []Kind{Generic, Music, Spotify} {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, "Music", Music.String())
	assert.Equal(t, "Spotify", Spotify.String())
	assert.Equal(t, "generic", Generic.String())
	assert.Equal(t, Generic, ParseKind("Winamp"))
}

func TestSet_For(t *testing.T) {
	generic := NewGeneric()
	music := NewMusic(&fakeRunner{})
	set := Set{Generic: generic, Music: music}

	assert.Same(t, music, set.For(Music))
	assert.Same(t, generic, set.For(Spotify))
	assert.Equal(t, []Adapter{music}, set.Scripted())
}

func TestMusic_CurrentState(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{
		"is running":   "true",
		"player state": "playing\nSong A\nArtist A\nAlbum A\n200,5\n12,25",
	}}

	got, err := NewMusic(runner).CurrentState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PlayerSnapshot{
		Name:     "Song A",
		Artist:   "Artist A",
		Album:    "Album A",
		State:    "Playing",
		Duration: 200500 * time.Millisecond,
		Position: 12250 * time.Millisecond,
	}, got)
	assert.True(t, got.IsPlaying())
}

func TestSpotify_CurrentStateUsesMilliseconds(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{
		"is running":   "true",
		"player state": "paused\nSong B\nArtist B\nAlbum B\n180000\n3.5",
	}}

	got, err := NewSpotify(runner, retryablehttp.NewClient()).CurrentState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 180*time.Second, got.Duration)
	assert.Equal(t, 3500*time.Millisecond, got.Position)
	assert.Equal(t, "Paused", got.State)
}

func TestCurrentState_Stopped(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{
		"is running":   "true",
		"player state": "stopped",
	}}
	got, err := NewMusic(runner).CurrentState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PlayerSnapshot{State: "Stopped"}, got)
}

func TestCurrentState_NotRunningNeverLaunches(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{"is running": "false"}}
	_, err := NewMusic(runner).CurrentState(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.Len(t, runner.ran, 1)
}

func TestMusic_CurrentPosition(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{"player position": "0:03:45"}}
	assert.Equal(t, 225*time.Second, NewMusic(runner).CurrentPosition(context.Background()))

	failing := &fakeRunner{failures: map[string]bool{"player position": true}}
	assert.Equal(t, time.Duration(0), NewMusic(failing).CurrentPosition(context.Background()))
}

func TestMusic_FetchArtwork(t *testing.T) {
	pathPattern := regexp.MustCompile(`POSIX file "([^"]+)"`)
	runner := &fakeRunner{handle: func(source string) (string, error) {
		path := pathPattern.FindStringSubmatch(source)[1]
		return "ok", os.WriteFile(path, []byte("jpeg bytes"), 0600)
	}}

	got, err := NewMusic(runner).FetchArtwork(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), got)

	// temp file is cleaned up afterwards
	path := pathPattern.FindStringSubmatch(runner.ran[0])[1]
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMusic_FetchArtworkMissing(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{"raw data": "none"}}
	_, err := NewMusic(runner).FetchArtwork(context.Background())
	assert.ErrorIs(t, err, ErrNoArtwork)
}

func TestSpotify_FetchArtwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/image/abc", r.URL.Path)
		w.Write([]byte("png bytes"))
	}))
	defer server.Close()

	runner := &fakeRunner{responses: map[string]string{"artwork url": server.URL + "/image/abc"}}
	got, err := NewSpotify(runner, retryablehttp.NewClient()).FetchArtwork(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), got)
}

func TestSpotify_FetchArtworkMissing(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{"artwork url": "missing value"}}
	_, err := NewSpotify(runner, retryablehttp.NewClient()).FetchArtwork(context.Background())
	assert.ErrorIs(t, err, ErrNoArtwork)
}

func TestSpotify_FetchArtworkBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	runner := &fakeRunner{responses: map[string]string{"artwork url": server.URL}}
	_, err := NewSpotify(runner, retryablehttp.NewClient()).FetchArtwork(context.Background())
	assert.EqualError(t, err, "artwork request returned 404")
}

func TestScriptedControls(t *testing.T) {
	runner := &fakeRunner{}
	spotify := NewSpotify(runner, retryablehttp.NewClient())
	ctx := context.Background()

	require.NoError(t, spotify.PlayPause(ctx))
	require.NoError(t, spotify.Next(ctx))
	require.NoError(t, spotify.Previous(ctx))
	require.NoError(t, spotify.Activate(ctx))
	require.NoError(t, spotify.SetVolume(ctx, 150))
	require.NoError(t, spotify.SetVolume(ctx, -3))

	assert.Equal(t, []string{
		`tell application "Spotify" to playpause`,
		`tell application "Spotify" to next track`,
		`tell application "Spotify" to previous track`,
		`tell application "Spotify" to activate`,
		`tell application "Spotify" to set sound volume to 100`,
		`tell application "Spotify" to set sound volume to 0`,
	}, runner.ran)
}

func TestGeneric(t *testing.T) {
	var pressed []mediakey.Key
	g := &GenericAdapter{press: func(k mediakey.Key) error {
		pressed = append(pressed, k)
		return nil
	}}
	ctx := context.Background()

	require.NoError(t, g.PlayPause(ctx))
	require.NoError(t, g.Next(ctx))
	require.NoError(t, g.Previous(ctx))
	assert.Equal(t, []mediakey.Key{mediakey.PlayPause, mediakey.Next, mediakey.Previous}, pressed)

	_, err := g.CurrentState(ctx)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = g.FetchArtwork(ctx)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, g.IsRunning(ctx))
}
