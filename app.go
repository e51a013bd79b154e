package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/marcus-crane/tunestatus/artwork"
	"github.com/marcus-crane/tunestatus/backend"
	"github.com/marcus-crane/tunestatus/config"
	"github.com/marcus-crane/tunestatus/db"
	"github.com/marcus-crane/tunestatus/events"
	"github.com/marcus-crane/tunestatus/notify"
	"github.com/marcus-crane/tunestatus/playback"
	"github.com/marcus-crane/tunestatus/scripting"
	"github.com/marcus-crane/tunestatus/snapshot"
	"github.com/marcus-crane/tunestatus/utils"
)

const (
	bootstrapDelay   = 2 * time.Second
	subscriberBuffer = 8
)

// App holds everything the running process shares between the tray, the
// HTTP API and the background jobs.
type App struct {
	cfg      config.Config
	settings *config.Settings

	adapters      backend.Set
	notifications chan notify.Notification
	observer      *notify.Distributed
	poller        *notify.Poller
	player        *playback.Aggregator

	covers    *artwork.CoverStore
	snapshots *snapshot.Store
	writer    *snapshot.Writer
	history   db.Store
	recorder  *db.Recorder
	events    *events.Broker

	scheduler gocron.Scheduler
	server    *http.Server
	wg        sync.WaitGroup
}

func NewApp(cfg config.Config) (*App, error) {
	if err := cfg.EnsureStorage(); err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	runner := scripting.NewOsascript(cfg.ScriptTimeout())
	adapters := backend.Set{
		backend.Generic: backend.NewGeneric(),
		backend.Music:   backend.NewMusic(runner),
		backend.Spotify: backend.NewSpotify(runner, utils.NewHTTPClient(cfg.Artwork.Retries)),
	}

	covers := artwork.NewCoverStore(cfg.CoverDir())
	cache := artwork.NewCache(cfg.Artwork.CacheSizeMB<<20, artwork.Options{
		Size:    cfg.Artwork.Size,
		Quality: cfg.Artwork.Quality,
	}, covers)

	notifications := make(chan notify.Notification, 16)
	snapshots := snapshot.NewStore(cfg.SnapshotPath())
	writer := snapshot.NewWriter(snapshots)

	player := playback.New(playback.Options{
		Adapters:      adapters,
		Artwork:       cache,
		Notifications: notifications,
		OnPublish:     []func(playback.Entry){writer.Observe},
	})

	history := openHistory(cfg.TuneStatus.DbPath)

	return &App{
		cfg:           cfg,
		settings:      config.LoadSettings(config.SettingsPath()),
		adapters:      adapters,
		notifications: notifications,
		observer:      notify.NewDistributed(notifications),
		poller:        notify.NewPoller(adapters.Scripted(), notifications),
		player:        player,
		covers:        covers,
		snapshots:     snapshots,
		writer:        writer,
		history:       history,
		recorder:      db.NewRecorder(history),
		events:        events.New(),
	}, nil
}

// openHistory falls back to an in-memory store so a broken database never
// stops now playing from working.
func openHistory(path string) db.Store {
	store, err := db.NewSqliteStore(path)
	if err == nil {
		err = store.ApplyMigrations()
	}
	if err != nil {
		slog.Error("Failed to open history database, keeping history in memory",
			slog.String("error", err.Error()),
			slog.String("path", path))
		if store != nil {
			store.Close()
		}
		return db.NewMemoryStore()
	}
	return store
}

// Start launches the background goroutines and returns. The caller owns the
// main thread, which must run either the tray or notify.RunMainLoop so that
// distributed notifications get delivered.
func (a *App) Start(ctx context.Context) error {
	a.goRun(func() {
		if err := a.player.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Aggregator stopped", slog.String("error", err.Error()))
		}
	})
	a.goRun(func() { a.writer.Run(ctx) })

	recorded, stopRecording := a.player.Subscribe(subscriberBuffer)
	a.goRun(func() {
		defer stopRecording()
		a.recorder.Run(ctx, recorded)
	})

	streamed, stopStreaming := a.player.Subscribe(subscriberBuffer)
	a.goRun(func() {
		defer stopStreaming()
		a.events.Run(ctx, streamed)
	})

	if err := a.observer.Start(ctx); err != nil {
		if !errors.Is(err, notify.ErrUnsupported) {
			return err
		}
		slog.Warn("Distributed notifications are not available, relying on polling")
	}

	scheduler, err := SetupInBackground(ctx, a.cfg, a.poller, a.covers)
	if err != nil {
		return fmt.Errorf("failed to set up jobs: %w", err)
	}
	a.scheduler = scheduler
	a.scheduler.Start()

	a.server = &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           RegisterRoutes(http.NewServeMux(), a),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.goRun(func() {
		slog.Info("TuneStatus API is listening", slog.String("addr", a.cfg.Server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", slog.String("error", err.Error()))
		}
	})

	a.goRun(func() {
		if err := a.player.Bootstrap(ctx, a.cfg.TuneStatus.BootstrapMode, bootstrapDelay); err != nil &&
			!errors.Is(err, context.Canceled) {
			slog.Warn("Bootstrap failed", slog.String("error", err.Error()))
		}
	})

	return nil
}

func (a *App) goRun(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// Shutdown expects the context given to Start to be cancelled already.
func (a *App) Shutdown() error {
	var errs []error
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.server.Shutdown(ctx))
	}
	if a.scheduler != nil {
		errs = append(errs, a.scheduler.Shutdown())
	}
	a.events.Close()
	a.wg.Wait()
	errs = append(errs, a.history.Close())
	return errors.Join(errs...)
}
