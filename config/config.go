package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/20after4/configdir"
	golobby "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"

	"github.com/marcus-crane/tunestatus/shared"
)

type Config struct {
	Artwork    ArtworkConfig
	Scripting  ScriptingConfig
	Server     ServerConfig
	TuneStatus TuneStatusConfig
}

type ArtworkConfig struct {
	CacheSizeMB int `env:"ARTWORK_CACHE_SIZE_MB"`
	Quality     int `env:"ARTWORK_QUALITY"`
	Retries     int `env:"ARTWORK_RETRIES"`
	Size        int `env:"ARTWORK_SIZE"`
}

type ScriptingConfig struct {
	TimeoutSeconds int `env:"SCRIPT_TIMEOUT_SECONDS"`
}

type ServerConfig struct {
	Addr           string `env:"HTTP_ADDR"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
	ControlSecret  string `env:"CONTROL_SECRET"`
}

type TuneStatusConfig struct {
	BootstrapMode       string `env:"BOOTSTRAP_MODE"`
	DbPath              string `env:"DB_PATH"`
	Headless            bool   `env:"HEADLESS"`
	LogLevel            string `env:"LOG_LEVEL"`
	PollIntervalSeconds int    `env:"POLL_INTERVAL_SECONDS"`
	StorageDir          string `env:"STORAGE_DIR"`
}

func Default() Config {
	return Config{
		Artwork: ArtworkConfig{
			CacheSizeMB: 20,
			Quality:     80,
			Retries:     0,
			Size:        320,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8088",
			AllowedOrigins: "http://localhost:8088,http://127.0.0.1:8088",
		},
		TuneStatus: TuneStatusConfig{
			BootstrapMode:       "query",
			LogLevel:            "info",
			PollIntervalSeconds: 5,
			StorageDir:          configdir.LocalCache(shared.APP_NAME),
		},
	}
}

// Load reads configuration from an optional dotenv file followed by the
// process environment, which takes precedence.
func Load(dotenvPath string) (Config, error) {
	cfg := Default()
	c := golobby.New()
	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			c.AddFeeder(feeder.DotEnv{Path: dotenvPath})
		}
	}
	c.AddFeeder(feeder.Env{})
	c.AddStruct(&cfg)
	if err := c.Feed(); err != nil {
		return cfg, err
	}
	if cfg.TuneStatus.DbPath == "" {
		cfg.TuneStatus.DbPath = filepath.Join(cfg.TuneStatus.StorageDir, "history.db")
	}
	return cfg, nil
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.TuneStatus.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}

func (c *Config) PollInterval() time.Duration {
	if c.TuneStatus.PollIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TuneStatus.PollIntervalSeconds) * time.Second
}

// ScriptTimeout is zero when scripting calls should not time out.
func (c *Config) ScriptTimeout() time.Duration {
	if c.Scripting.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Scripting.TimeoutSeconds) * time.Second
}

func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) SnapshotPath() string {
	return filepath.Join(c.TuneStatus.StorageDir, "snapshot.db")
}

func (c *Config) CoverDir() string {
	return filepath.Join(c.TuneStatus.StorageDir, "covers")
}

// EnsureStorage creates the storage directories, returning the first failure.
func (c *Config) EnsureStorage() error {
	if err := configdir.MakePath(c.TuneStatus.StorageDir); err != nil {
		return err
	}
	return configdir.MakePath(c.CoverDir())
}
