// Package snapshot shares the now playing state with other processes
// through a small bbolt file.
package snapshot

import (
	"log/slog"
	"math"
	"time"

	"github.com/marcus-crane/tunestatus/artwork"
	"github.com/marcus-crane/tunestatus/backend"
	"github.com/marcus-crane/tunestatus/playback"
	"github.com/marcus-crane/tunestatus/shared"
)

// Snapshot is the persisted form of a playback.Entry. Times are in
// seconds.
type Snapshot struct {
	TrackName       string    `json:"trackName"`
	ArtistName      string    `json:"artistName"`
	AlbumName       string    `json:"albumName"`
	CurrentTime     float64   `json:"currentTime"`
	Duration        float64   `json:"duration"`
	IsPlaying       bool      `json:"isPlaying"`
	LastUpdateTime  time.Time `json:"lastUpdateTime"`
	AppSource       string    `json:"appSource"`
	ArtworkBase64   string    `json:"artworkBase64,omitempty"`
	ArtworkURL      string    `json:"artworkUrl,omitempty"`
	DominantColours []string  `json:"dominantColours,omitempty"`
	AccentColour    string    `json:"accentColour,omitempty"`
}

func Empty() Snapshot {
	return Snapshot{
		TrackName:      shared.SENTINEL_VALUE,
		ArtistName:     shared.SENTINEL_VALUE,
		AlbumName:      shared.SENTINEL_VALUE,
		CurrentTime:    0,
		Duration:       1,
		IsPlaying:      false,
		LastUpdateTime: time.Now(),
		AppSource:      backend.Generic.String(),
	}
}

func FromEntry(e playback.Entry) Snapshot {
	return Snapshot{
		TrackName:       e.TrackName,
		ArtistName:      e.ArtistName,
		AlbumName:       e.AlbumName,
		CurrentTime:     e.Position.Seconds(),
		Duration:        e.Duration.Seconds(),
		IsPlaying:       e.IsPlaying,
		LastUpdateTime:  e.CapturedAt,
		AppSource:       e.Source.String(),
		ArtworkBase64:   e.ArtworkBase64,
		ArtworkURL:      e.ArtworkLocation,
		DominantColours: e.ArtworkColours,
		AccentColour:    e.ArtworkAccent,
	}
}

func (s Snapshot) Kind() backend.Kind {
	return backend.ParseKind(s.AppSource)
}

func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.CurrentTime / s.Duration
}

// Entry rebuilds the playback fields. Artwork that fails to decode is
// dropped along with its base64 form and location.
func (s Snapshot) Entry() playback.Entry {
	e := playback.Entry{
		CapturedAt:     s.LastUpdateTime,
		TrackName:      s.TrackName,
		ArtistName:     s.ArtistName,
		AlbumName:      s.AlbumName,
		Position:       seconds(s.CurrentTime),
		Duration:       seconds(s.Duration),
		IsPlaying:      s.IsPlaying,
		Source:         s.Kind(),
		ArtworkColours: s.DominantColours,
		ArtworkAccent:  s.AccentColour,
	}
	if s.ArtworkBase64 != "" {
		img, err := artwork.Decode(s.ArtworkBase64)
		if err != nil {
			slog.Debug("Failed to decode snapshot artwork", slog.String("error", err.Error()))
			return e
		}
		e.Artwork = img
		e.ArtworkBase64 = s.ArtworkBase64
	}
	e.ArtworkLocation = s.ArtworkURL
	return e
}

// rounded so fractional seconds survive the float conversion
func seconds(f float64) time.Duration {
	return time.Duration(math.Round(f * float64(time.Second)))
}
