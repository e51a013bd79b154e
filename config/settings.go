package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/20after4/configdir"
	"github.com/pelletier/go-toml/v2"

	"github.com/marcus-crane/tunestatus/shared"
)

// Settings holds display preferences for the menu bar title. They are read
// by the presentation shell only; the aggregator never looks at them.
type Settings struct {
	MenuBar MenuBarSettings
}

type MenuBarSettings struct {
	ShowArtist bool
	ShowAlbum  bool
	MaxWidth   int
}

func DefaultSettings() *Settings {
	return &Settings{
		MenuBar: MenuBarSettings{
			ShowArtist: true,
			ShowAlbum:  false,
			MaxWidth:   32,
		},
	}
}

func SettingsPath() string {
	return filepath.Join(configdir.LocalConfig(shared.APP_NAME), "settings.toml")
}

func ReadSettingsFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := DefaultSettings()
	if err := toml.NewDecoder(f).Decode(s); err != nil {
		return nil, err
	}
	s.normalize()
	return s, nil
}

// LoadSettings never fails. A missing or broken file yields defaults.
func LoadSettings(path string) *Settings {
	s, err := ReadSettingsFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read settings, using defaults",
				slog.String("error", err.Error()),
				slog.String("path", path))
		}
		return DefaultSettings()
	}
	return s
}

var writeLock sync.Mutex

func (s *Settings) WriteSettingsFile(path string) error {
	if !writeLock.TryLock() {
		return nil // another write in progress
	}
	defer writeLock.Unlock()

	s.normalize()
	b, err := toml.Marshal(s)
	if err != nil {
		return err
	}
	if err := configdir.MakePath(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ToggleArtist flips the artist in the menu bar title. Hiding the artist
// hides the album too.
func (s *Settings) ToggleArtist() bool {
	s.MenuBar.ShowArtist = !s.MenuBar.ShowArtist
	if !s.MenuBar.ShowArtist {
		s.MenuBar.ShowAlbum = false
	}
	return s.MenuBar.ShowArtist
}

// ToggleAlbum flips the album in the menu bar title. It stays off while the
// artist is hidden.
func (s *Settings) ToggleAlbum() bool {
	s.MenuBar.ShowAlbum = !s.MenuBar.ShowAlbum && s.MenuBar.ShowArtist
	return s.MenuBar.ShowAlbum
}

// album is only shown alongside the artist
func (s *Settings) normalize() {
	if s.MenuBar.ShowAlbum && !s.MenuBar.ShowArtist {
		s.MenuBar.ShowAlbum = false
	}
	if s.MenuBar.MaxWidth <= 0 {
		s.MenuBar.MaxWidth = DefaultSettings().MenuBar.MaxWidth
	}
}
