package db

import (
	"context"
	"log/slog"

	"github.com/marcus-crane/tunestatus/playback"
)

// Recorder writes history rows when the track or player state changes, or
// when artwork turns up for the current track. Position ticks alone are not
// recorded.
type Recorder struct {
	store Store

	lastKey    string
	lastStatus Status
	lastImage  string
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) Run(ctx context.Context, entries <-chan playback.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			if err := r.Observe(e); err != nil {
				slog.Warn("Failed to record playback", slog.String("error", err.Error()))
			}
		}
	}
}

func (r *Recorder) Observe(e playback.Entry) error {
	if !e.HasTrack() {
		return nil
	}

	update := UpdateFromEntry(e)
	key := GenerateMediaID(&update)
	if key == r.lastKey && update.Status == r.lastStatus && update.MediaItem.Image == r.lastImage {
		return nil
	}

	if err := r.store.Record(update); err != nil {
		return err
	}
	r.lastKey = key
	r.lastStatus = update.Status
	r.lastImage = update.MediaItem.Image
	return nil
}

func UpdateFromEntry(e playback.Entry) Update {
	status := StatusPaused
	if e.IsPlaying {
		status = StatusPlaying
	}
	return Update{
		MediaItem: MediaItem{
			Title:           e.TrackName,
			Subtitle:        e.ArtistName,
			Album:           e.AlbumName,
			Category:        CategoryTrack,
			Duration:        int(e.Duration.Milliseconds()),
			Source:          e.Source.String(),
			Image:           e.ArtworkLocation,
			DominantColours: SerializableColours(e.ArtworkColours),
		},
		Elapsed: e.Position,
		Status:  status,
	}
}
