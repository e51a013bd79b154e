// Package notify turns app broadcasts and polled app state into
// Notifications for the aggregator.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/marcus-crane/tunestatus/backend"
	"github.com/marcus-crane/tunestatus/shared"
)

// Payload keys as broadcast by Music and Spotify.
const (
	keyPlayerState      = "Player State"
	keyName             = "Name"
	keyArtist           = "Artist"
	keyAlbum            = "Album"
	keyTotalTime        = "Total Time"
	keyDuration         = "Duration"
	keyPlaybackPosition = "Playback Position"
	keyHasArtwork       = "Has Artwork"
)

// Notification is a partial update from one backend. Nil fields were absent
// from the payload and must not overwrite anything.
type Notification struct {
	Source      backend.Kind
	ReceivedAt  time.Time
	PlayerState *string
	Name        *string
	Artist      *string
	Album       *string
	Duration    *time.Duration
	Position    *time.Duration
	HasArtwork  *bool
}

// IsPlaying reports the playing flag and whether the payload carried one.
func (n Notification) IsPlaying() (playing bool, ok bool) {
	if n.PlayerState == nil {
		return false, false
	}
	return *n.PlayerState == shared.PLAYER_STATE_PLAYING, true
}

// ArtworkAbsent is true only when the payload explicitly says there is no
// artwork.
func (n Notification) ArtworkAbsent() bool {
	return n.HasArtwork != nil && !*n.HasArtwork
}

func KindForName(name string) (backend.Kind, bool) {
	switch name {
	case shared.NOTIFICATION_MUSIC:
		return backend.Music, true
	case shared.NOTIFICATION_SPOTIFY:
		return backend.Spotify, true
	}
	return backend.Generic, false
}

// FromUserInfo builds a Notification from a decoded notification payload.
// Durations arrive in milliseconds and the position in seconds.
func FromUserInfo(source backend.Kind, info map[string]any) Notification {
	n := Notification{Source: source, ReceivedAt: time.Now()}

	n.PlayerState = stringField(info, keyPlayerState)
	n.Name = stringField(info, keyName)
	n.Artist = stringField(info, keyArtist)
	n.Album = stringField(info, keyAlbum)

	if d := numberField(info, keyTotalTime, time.Millisecond); d != nil {
		n.Duration = d
	} else {
		n.Duration = numberField(info, keyDuration, time.Millisecond)
	}
	n.Position = numberField(info, keyPlaybackPosition, time.Second)

	if v, ok := info[keyHasArtwork]; ok {
		switch b := v.(type) {
		case bool:
			n.HasArtwork = &b
		case float64:
			has := b != 0
			n.HasArtwork = &has
		}
	}
	return n
}

// FromPayload decodes a JSON encoded notification payload.
func FromPayload(source backend.Kind, payload []byte) (Notification, error) {
	info := map[string]any{}
	if err := json.Unmarshal(payload, &info); err != nil {
		return Notification{}, fmt.Errorf("failed to decode %s payload: %w", source, err)
	}
	return FromUserInfo(source, info), nil
}

// FromPlayerSnapshot describes a queried player as if the app had
// broadcast it. A stopped player only reports its state.
func FromPlayerSnapshot(source backend.Kind, p backend.PlayerSnapshot) Notification {
	n := Notification{Source: source, ReceivedAt: time.Now(), PlayerState: &p.State}
	if p.State == shared.PLAYER_STATE_STOPPED {
		return n
	}
	n.Name = &p.Name
	n.Artist = &p.Artist
	n.Album = &p.Album
	n.Duration = &p.Duration
	n.Position = &p.Position
	return n
}

func stringField(info map[string]any, key string) *string {
	v, ok := info[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func numberField(info map[string]any, key string, unit time.Duration) *time.Duration {
	v, ok := info[key]
	if !ok {
		return nil
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			slog.Debug("Ignoring non-numeric payload value",
				slog.String("key", key),
				slog.String("value", n))
			return nil
		}
		f = parsed
	default:
		return nil
	}
	d := time.Duration(f * float64(unit))
	return &d
}
