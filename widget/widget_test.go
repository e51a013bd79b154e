package widget

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/tunestatus/snapshot"
)

type staticLoader struct {
	snap  snapshot.Snapshot
	loads int
}

func (l *staticLoader) Load() snapshot.Snapshot {
	l.loads++
	return l.snap
}

type recordingController struct {
	commands []string
	err      error
}

func (c *recordingController) Control(ctx context.Context, command string) error {
	c.commands = append(c.commands, command)
	return c.err
}

func playingSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		TrackName:      "Song A",
		ArtistName:     "Artist A",
		AlbumName:      "Album A",
		CurrentTime:    65,
		Duration:       200,
		IsPlaying:      true,
		LastUpdateTime: time.Now(),
		AppSource:      "Music",
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", formatClock(0))
	assert.Equal(t, "1:05", formatClock(65.7))
	assert.Equal(t, "1:00:00", formatClock(3600))
}

func TestRender(t *testing.T) {
	out := Render(playingSnapshot(), 48, DefaultStyles())
	assert.Contains(t, out, "Song A")
	assert.Contains(t, out, "Artist A")
	assert.Contains(t, out, "1:05 / 3:20")
	assert.Contains(t, out, "Music")

	out = Render(snapshot.Empty(), 48, DefaultStyles())
	assert.Contains(t, out, "Nothing playing")
	assert.NotContains(t, out, "None")
}

func TestModel_RefreshesFromStore(t *testing.T) {
	loader := &staticLoader{snap: playingSnapshot()}
	m := New(loader, nil)

	cmd := m.load()
	updated, _ := m.Update(cmd())
	assert.Equal(t, "Song A", updated.(Model).snap.TrackName)
	assert.Equal(t, 1, loader.loads)

	_, next := updated.Update(tickMsg(time.Now()))
	assert.NotNil(t, next)
}

func TestModel_KeysSendControls(t *testing.T) {
	loader := &staticLoader{snap: playingSnapshot()}
	control := &recordingController{}
	m := New(loader, control)

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeySpace, Runes: []rune{' '}},
		{Type: tea.KeyRunes, Runes: []rune{'n'}},
		{Type: tea.KeyRunes, Runes: []rune{'b'}},
	} {
		_, cmd := m.Update(key)
		require.NotNil(t, cmd)
		msg := cmd()
		_, ok := msg.(controlDoneMsg)
		require.True(t, ok)
	}
	assert.Equal(t, []string{"playpause", "next", "previous"}, control.commands)

	control.err = errors.New("connection refused")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	updated, _ := m.Update(cmd())
	assert.Contains(t, updated.View(), "connection refused")
}

func TestModel_NoControllerIgnoresKeys(t *testing.T) {
	m := New(&staticLoader{snap: playingSnapshot()}, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Nil(t, cmd)
}

func TestClient_SignsControls(t *testing.T) {
	var gotPath, gotType string
	var gotBody ControlRequest
	var verifyErr error
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		verifyErr = Verify(body, r.Header.Get(SignatureHeader), "hunter2")
		gotBody = ControlRequest{}
		json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(strings.TrimPrefix(srv.URL, "http://"), "hunter2")
	require.NoError(t, c.Control(context.Background(), "next"))
	assert.Equal(t, "/api/control/next", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "next", gotBody.Command)
	assert.Nil(t, gotBody.Level)
	assert.NoError(t, verifyErr)

	require.NoError(t, c.Volume(context.Background(), 40))
	assert.Equal(t, "/api/volume?level=40", gotPath)
	assert.Equal(t, "volume", gotBody.Command)
	require.NotNil(t, gotBody.Level)
	assert.Equal(t, 40, *gotBody.Level)
	assert.NoError(t, verifyErr)
}

func TestClient_ReportsRejections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Control(context.Background(), "next")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSign_RejectsWrongSecret(t *testing.T) {
	body := []byte(`{"command":"next"}`)
	assert.NoError(t, Verify(body, Sign(body, "a"), "a"))
	assert.Error(t, Verify(body, Sign(body, "a"), "b"))
}
