package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

type Store interface {
	ApplyMigrations() error
	Record(update Update) error
	History(limit int) ([]HistoryEntry, error)
	Active() ([]HistoryEntry, error)
	Close() error
}

type Status string

const (
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

const CategoryTrack = "track"

// SerializableColours is stored as a JSON array.
type SerializableColours []string

func (c SerializableColours) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	return string(b), err
}

func (c *SerializableColours) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = SerializableColours{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("unsupported type for dominant colours")
	}
	return json.Unmarshal(raw, c)
}

// PlaybackEntry is one listen of a MediaItem. If a song is played 5 times,
// there will be one MediaItem with five PlaybackEntry rows. An entry is
// revived when the same track is paused and resumed, but a new entry is
// created once something else has played in between.
type PlaybackEntry struct {
	ID        int       `db:"id"`
	MediaID   string    `db:"media_id"`
	Category  string    `db:"category"`
	CreatedAt time.Time `db:"created_at"`
	Elapsed   int       `db:"elapsed"` // milliseconds
	Status    Status    `db:"status"`
	IsActive  bool      `db:"is_active"`
	UpdatedAt time.Time `db:"updated_at"`
	Source    string    `db:"source"`
}

// MediaItem stores metadata about each track that has been played.
type MediaItem struct {
	ID              string              `db:"id"`
	Title           string              `db:"title"`
	Subtitle        string              `db:"subtitle"`
	Album           string              `db:"album"`
	Category        string              `db:"category"`
	Duration        int                 `db:"duration"`
	Source          string              `db:"source"`
	Image           string              `db:"image"`
	DominantColours SerializableColours `db:"dominant_colours"`
}

// HistoryEntry is a PlaybackEntry with its MediaItem attached.
type HistoryEntry struct {
	ID              string              `db:"id" json:"id"`
	Title           string              `db:"title" json:"title"`
	Subtitle        string              `db:"subtitle" json:"subtitle"`
	Album           string              `db:"album" json:"album"`
	Category        string              `db:"category" json:"category"`
	Duration        int                 `db:"duration" json:"duration_ms"`
	Source          string              `db:"source" json:"source"`
	Image           string              `db:"image" json:"image"`
	DominantColours SerializableColours `db:"dominant_colours" json:"dominant_colours"`

	PlaybackID int       `db:"playback_id" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Elapsed    int       `db:"elapsed" json:"elapsed_ms"`
	Status     Status    `db:"status" json:"status"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type Update struct {
	MediaItem MediaItem
	Elapsed   time.Duration
	Status    Status
}

// GenerateMediaID is deterministic for a track from a given app. Artwork and
// duration are left out since both can change after a track starts.
func GenerateMediaID(u *Update) string {
	hashString := fmt.Sprintf("%s-%s-%s-%s-%s",
		u.MediaItem.Title,
		u.MediaItem.Subtitle,
		u.MediaItem.Album,
		u.MediaItem.Category,
		u.MediaItem.Source,
	)
	return fmt.Sprintf(
		"%s:%s:%d",
		u.MediaItem.Source,
		u.MediaItem.Category,
		xxhash.Sum64String(hashString),
	)
}
