package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogLevel(t *testing.T) {
	testCases := []struct {
		level string
		want  slog.Level
	}{
		{"error", slog.LevelError},
		{"WARNING", slog.LevelWarn},
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			cfg := Default()
			cfg.TuneStatus.LogLevel = tc.level
			assert.Equal(t, tc.want, cfg.GetLogLevel().Level())
		})
	}
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	storage := t.TempDir()
	t.Setenv("STORAGE_DIR", storage)
	t.Setenv("POLL_INTERVAL_SECONDS", "0")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("BOOTSTRAP_MODE", "toggle")
	t.Setenv("SCRIPT_TIMEOUT_SECONDS", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, storage, cfg.TuneStatus.StorageDir)
	assert.Equal(t, filepath.Join(storage, "history.db"), cfg.TuneStatus.DbPath)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "toggle", cfg.TuneStatus.BootstrapMode)
	assert.Equal(t, time.Duration(0), cfg.PollInterval())
	assert.Equal(t, 3*time.Second, cfg.ScriptTimeout())
	// untouched values keep their defaults
	assert.Equal(t, 320, cfg.Artwork.Size)
	assert.Equal(t, 80, cfg.Artwork.Quality)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ARTWORK_SIZE=256\nSTORAGE_DIR="+dir+"\n"), 0644))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Artwork.Size)
	assert.Equal(t, dir, cfg.TuneStatus.StorageDir)
}

func TestOrigins(t *testing.T) {
	cfg := Default()
	cfg.Server.AllowedOrigins = " http://a.test, ,http://b.test "
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins())
}

func TestSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")

	s := DefaultSettings()
	s.MenuBar.ShowAlbum = true
	s.MenuBar.MaxWidth = 40
	require.NoError(t, s.WriteSettingsFile(path))

	got, err := ReadSettingsFile(path)
	require.NoError(t, err)
	assert.True(t, got.MenuBar.ShowArtist)
	assert.True(t, got.MenuBar.ShowAlbum)
	assert.Equal(t, 40, got.MenuBar.MaxWidth)
}

func TestSettings_AlbumRequiresArtist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	contents := "[MenuBar]\nShowArtist = false\nShowAlbum = true\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	got, err := ReadSettingsFile(path)
	require.NoError(t, err)
	assert.False(t, got.MenuBar.ShowArtist)
	assert.False(t, got.MenuBar.ShowAlbum)
	assert.Equal(t, 32, got.MenuBar.MaxWidth)
}

func TestSettings_HidingArtistHidesAlbum(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.ToggleAlbum())
	assert.True(t, s.MenuBar.ShowAlbum)

	assert.False(t, s.ToggleArtist())
	assert.False(t, s.MenuBar.ShowAlbum)

	// album cannot come back on its own
	assert.False(t, s.ToggleAlbum())
	assert.False(t, s.MenuBar.ShowAlbum)

	// showing the artist again leaves the album off until asked for
	assert.True(t, s.ToggleArtist())
	assert.False(t, s.MenuBar.ShowAlbum)
	assert.True(t, s.ToggleAlbum())
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	got := LoadSettings(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Equal(t, DefaultSettings(), got)
}
