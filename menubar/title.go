// Package menubar renders the now playing entry as a short menu bar title.
package menubar

import (
	"strings"

	"github.com/marcus-crane/tunestatus/config"
	"github.com/marcus-crane/tunestatus/playback"
	"github.com/marcus-crane/tunestatus/shared"
)

const (
	idleTitle = "♫"
	separator = " - "
)

// Title joins the parts of the entry the user asked to see. Artist and album
// are skipped when a source left them empty.
func Title(e playback.Entry, s config.MenuBarSettings) string {
	if !e.HasTrack() {
		return idleTitle
	}

	parts := []string{e.TrackName}
	if s.ShowArtist && known(e.ArtistName) {
		parts = append(parts, e.ArtistName)
		if s.ShowAlbum && known(e.AlbumName) {
			parts = append(parts, e.AlbumName)
		}
	}

	title := strings.Join(parts, separator)
	if !e.IsPlaying {
		title = "❚❚ " + title
	}
	return title
}

func known(s string) bool {
	return s != "" && s != shared.SENTINEL_VALUE
}
