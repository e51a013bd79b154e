package events

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/tunestatus/backend"
	"github.com/marcus-crane/tunestatus/playback"
)

func TestBroker_StreamsEntries(t *testing.T) {
	b := New()
	srv := httptest.NewServer(b)
	t.Cleanup(func() {
		srv.CloseClientConnections()
		srv.Close()
		b.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?stream=playback", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool {
		return b.Sessions().ActiveSessions == 1
	}, time.Second, 10*time.Millisecond)

	e := playback.NewEntry()
	e.TrackName = "Song A"
	e.IsPlaying = true
	e.Source = backend.Spotify

	entries := make(chan playback.Entry, 1)
	entries <- e
	close(entries)
	b.Run(ctx, entries)

	scanner := bufio.NewScanner(resp.Body)
	var data string
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	require.NotEmpty(t, data)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, "Song A", got["trackName"])
	assert.Equal(t, true, got["isPlaying"])
	assert.Equal(t, int64(1), b.Sessions().SessionsSeen)
}
