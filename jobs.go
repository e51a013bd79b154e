package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/marcus-crane/tunestatus/artwork"
	"github.com/marcus-crane/tunestatus/config"
	"github.com/marcus-crane/tunestatus/notify"
)

const (
	coverPruneInterval = time.Hour
	coverMaxAge        = 30 * 24 * time.Hour
)

func SetupInBackground(ctx context.Context, cfg config.Config, poller *notify.Poller, covers *artwork.CoverStore) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	// Catches apps that were already playing before we started listening,
	// and anything the broadcasts missed.
	if interval := cfg.PollInterval(); interval > 0 {
		if _, err := s.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(poller.Poll, ctx),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return nil, err
		}
	} else {
		slog.Info("Polling is disabled")
	}

	if _, err := s.NewJob(
		gocron.DurationJob(coverPruneInterval),
		gocron.NewTask(pruneCovers, covers, coverMaxAge),
	); err != nil {
		return nil, err
	}

	return s, nil
}

func pruneCovers(covers *artwork.CoverStore, maxAge time.Duration) {
	removed, err := covers.Prune(maxAge)
	if err != nil {
		slog.Warn("Failed to prune covers", slog.String("error", err.Error()))
		return
	}
	if removed > 0 {
		slog.Debug("Pruned old covers", slog.Int("removed", removed))
	}
}
