package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus-crane/tunestatus/menubar"
	"github.com/marcus-crane/tunestatus/shared"
	"github.com/marcus-crane/tunestatus/snapshot"
)

type Styles struct {
	Frame  lipgloss.Style
	Title  lipgloss.Style
	Artist lipgloss.Style
	Album  lipgloss.Style
	Bar    lipgloss.Style
	Track  lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Frame:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Title:  lipgloss.NewStyle().Bold(true),
		Artist: lipgloss.NewStyle(),
		Album:  lipgloss.NewStyle().Faint(true),
		Bar:    lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954")),
		Track:  lipgloss.NewStyle().Faint(true),
		Muted:  lipgloss.NewStyle().Faint(true),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56")),
	}
}

// withAccent tints the title and bar with the artwork accent colour.
func (s Styles) withAccent(hex string) Styles {
	if hex == "" {
		return s
	}
	s.Title = s.Title.Foreground(lipgloss.Color(hex))
	s.Bar = s.Bar.Foreground(lipgloss.Color(hex))
	s.Frame = s.Frame.BorderForeground(lipgloss.Color(hex))
	return s
}

// Render draws a snapshot into a box width cells wide.
func Render(snap snapshot.Snapshot, width int, styles Styles) string {
	if width < 20 {
		width = 20
	}
	inner := width - styles.Frame.GetHorizontalFrameSize()
	box := width - styles.Frame.GetHorizontalBorderSize()

	if snap.TrackName == shared.SENTINEL_VALUE || snap.TrackName == "" {
		return styles.Frame.Width(box).Render(styles.Muted.Render("Nothing playing"))
	}

	styles = styles.withAccent(snap.AccentColour)

	state := "▶"
	if !snap.IsPlaying {
		state = "❚❚"
	}

	lines := []string{
		styles.Title.Render(menubar.Truncate(snap.TrackName, inner)),
	}
	if snap.ArtistName != shared.SENTINEL_VALUE && snap.ArtistName != "" {
		lines = append(lines, styles.Artist.Render(menubar.Truncate(snap.ArtistName, inner)))
	}
	if snap.AlbumName != shared.SENTINEL_VALUE && snap.AlbumName != "" {
		lines = append(lines, styles.Album.Render(menubar.Truncate(snap.AlbumName, inner)))
	}

	clock := fmt.Sprintf("%s %s / %s", state, formatClock(snap.CurrentTime), formatClock(snap.Duration))
	lines = append(lines,
		"",
		progressBar(snap.Progress(), inner, styles),
		lipgloss.JoinHorizontal(lipgloss.Top,
			clock,
			strings.Repeat(" ", max(1, inner-lipgloss.Width(clock)-lipgloss.Width(snap.AppSource))),
			styles.Muted.Render(snap.AppSource),
		),
	)

	return styles.Frame.Width(box).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func progressBar(progress float64, width int, styles Styles) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	return styles.Bar.Render(strings.Repeat("━", filled)) +
		styles.Track.Render(strings.Repeat("─", width-filled))
}

func formatClock(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
