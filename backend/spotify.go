package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/marcus-crane/tunestatus/scripting"
	"github.com/marcus-crane/tunestatus/shared"
)

type SpotifyAdapter struct {
	scriptedApp
	client *retryablehttp.Client
}

func NewSpotify(runner scripting.Runner, client *retryablehttp.Client) *SpotifyAdapter {
	return &SpotifyAdapter{
		scriptedApp: scriptedApp{
			app:          shared.APP_SPOTIFY,
			runner:       runner,
			durationUnit: time.Millisecond,
		},
		client: client,
	}
}

func (s *SpotifyAdapter) Kind() Kind {
	return Spotify
}

func (s *SpotifyAdapter) CurrentPosition(ctx context.Context) time.Duration {
	out := scripting.RunString(ctx, s.runner, scripting.Phrase(s.app, "player position"))
	position, _ := parseAmount(out, time.Second)
	return position
}

func (s *SpotifyAdapter) FetchArtwork(ctx context.Context) ([]byte, error) {
	artworkURL, err := s.phrase(ctx, "artwork url of current track")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artwork url: %w", err)
	}
	if artworkURL == "" || artworkURL == "missing value" {
		return nil, ErrNoArtwork
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork request returned %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}
