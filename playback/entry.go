package playback

import (
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus-crane/tunestatus/artwork"
	"github.com/marcus-crane/tunestatus/backend"
	"github.com/marcus-crane/tunestatus/shared"
)

// Entry is the reconciled now playing state. "None" marks values that no
// source has reported yet, which is different from an empty string.
type Entry struct {
	CapturedAt time.Time

	TrackName  string
	ArtistName string
	AlbumName  string

	// Artwork and ArtworkBase64 are always set and cleared together.
	Artwork         image.Image
	ArtworkBase64   string
	ArtworkColours  []string
	ArtworkAccent   string
	ArtworkLocation string

	Position  time.Duration
	Duration  time.Duration
	IsPlaying bool

	Source backend.Kind
}

func NewEntry() Entry {
	return Entry{
		CapturedAt: time.Now(),
		TrackName:  shared.SENTINEL_VALUE,
		ArtistName: shared.SENTINEL_VALUE,
		AlbumName:  shared.SENTINEL_VALUE,
		Duration:   time.Second,
		Source:     backend.Generic,
	}
}

// Progress is the fraction of the track played. It is not clamped since
// the clock can run past a stale duration.
func (e Entry) Progress() float64 {
	if e.Duration <= 0 {
		return 0
	}
	return float64(e.Position) / float64(e.Duration)
}

func (e Entry) HasArtwork() bool {
	return e.Artwork != nil
}

func (e Entry) HasTrack() bool {
	return e.TrackName != shared.SENTINEL_VALUE && e.TrackName != ""
}

// TrackKey identifies the current track by name, artist and album.
func (e Entry) TrackKey() string {
	return TrackKey(e.TrackName, e.ArtistName, e.AlbumName)
}

func TrackKey(name, artist, album string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(name+"\x00"+artist+"\x00"+album))
}

func (e *Entry) clearArtwork() {
	e.Artwork = nil
	e.ArtworkBase64 = ""
	e.ArtworkColours = nil
	e.ArtworkAccent = ""
	e.ArtworkLocation = ""
}

func (e *Entry) setArtwork(art *artwork.Artwork) {
	e.Artwork = art.Image
	e.ArtworkBase64 = art.Base64
	e.ArtworkColours = art.Colours
	e.ArtworkAccent = art.Accent
	e.ArtworkLocation = art.Location
}

type entryJSON struct {
	CapturedAt     time.Time    `json:"capturedAt"`
	TrackName      string       `json:"trackName"`
	ArtistName     string       `json:"artistName"`
	AlbumName      string       `json:"albumName"`
	Position       float64      `json:"position"`
	Duration       float64      `json:"duration"`
	Progress       float64      `json:"progress"`
	IsPlaying      bool         `json:"isPlaying"`
	Source         backend.Kind `json:"source"`
	ArtworkURL     string       `json:"artworkUrl,omitempty"`
	ArtworkBase64  string       `json:"artworkBase64,omitempty"`
	ArtworkColours []string     `json:"dominantColours,omitempty"`
	ArtworkAccent  string       `json:"accentColour,omitempty"`
}

// MarshalJSON leaves out the base64 artwork, which callers can ask for
// with WithArtwork.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.view(false))
}

// WithArtwork wraps e so that it marshals including the base64 artwork.
func (e Entry) WithArtwork() json.Marshaler {
	return artworkEntry(e)
}

type artworkEntry Entry

func (a artworkEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(Entry(a).view(true))
}

func (e Entry) view(includeArtwork bool) entryJSON {
	v := entryJSON{
		CapturedAt:     e.CapturedAt,
		TrackName:      e.TrackName,
		ArtistName:     e.ArtistName,
		AlbumName:      e.AlbumName,
		Position:       e.Position.Seconds(),
		Duration:       e.Duration.Seconds(),
		Progress:       e.Progress(),
		IsPlaying:      e.IsPlaying,
		Source:         e.Source,
		ArtworkURL:     e.ArtworkLocation,
		ArtworkColours: e.ArtworkColours,
		ArtworkAccent:  e.ArtworkAccent,
	}
	if includeArtwork {
		v.ArtworkBase64 = e.ArtworkBase64
	}
	return v
}
