package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/marcus-crane/tunestatus/migrations"

	_ "modernc.org/sqlite"
)

type SqliteStore struct {
	DB *sqlx.DB
}

func NewSqliteStore(dsn string) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single writer avoids SQLITE_BUSY and keeps :memory: databases on
	// one connection
	db.SetMaxOpenConns(1)
	return &SqliteStore{
		DB: db,
	}, nil
}

func (s *SqliteStore) ApplyMigrations() error {
	goose.SetBaseFS(migrations.GetMigrations())
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, "."); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

// Record folds an update into the history. The same track updates its
// latest entry in place while a different track closes that entry off and
// starts a new one.
func (s *SqliteStore) Record(update Update) error {
	update.MediaItem.ID = GenerateMediaID(&update)

	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}

	var committed bool
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	// UTC keeps the stored text sortable
	now := time.Now().UTC()
	elapsed := int(update.Elapsed.Milliseconds())

	var existingEntry PlaybackEntry
	err = tx.Get(&existingEntry, `
	  SELECT id, media_id, elapsed, status, is_active
	  FROM playback_entries
	  ORDER BY updated_at DESC, id DESC LIMIT 1`)

	if err == nil {
		if existingEntry.MediaID != update.MediaItem.ID {
			_, err := tx.Exec(`
			  UPDATE playback_entries
			  SET is_active = FALSE, status = ?, updated_at = ?
			  WHERE id = ?`,
				StatusStopped, now, existingEntry.ID)
			if err != nil {
				return fmt.Errorf("failed to deactivate old entry: %w", err)
			}
		} else {
			if existingEntry.Status != update.Status || existingEntry.Elapsed != elapsed {
				_, err := tx.Exec(`
				UPDATE playback_entries
				SET elapsed = ?, status = ?, is_active = ?, updated_at = ?
				WHERE id = ?`,
					elapsed, update.Status, update.Status == StatusPlaying, now, existingEntry.ID)
				if err != nil {
					return err
				}
			}

			if update.MediaItem.Image != "" {
				_, err := tx.Exec(`
				UPDATE media_items
				SET image = ?, dominant_colours = ?
				WHERE id = ? AND image = ''`,
					update.MediaItem.Image, update.MediaItem.DominantColours, update.MediaItem.ID)
				if err != nil {
					return err
				}
			}

			slog.Debug("Updated existing entry", slog.String("media_id", update.MediaItem.ID))

			if err = tx.Commit(); err != nil {
				return err
			}
			committed = true
			return nil
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	// Tracks that were played before already have a media item so the
	// insert is a no-op for them.
	_, err = tx.NamedExec(`
	  INSERT INTO media_items
	  (id, title, subtitle, album, category, duration, source, image, dominant_colours)
	  VALUES (:id, :title, :subtitle, :album, :category, :duration, :source, :image, :dominant_colours)
	  ON CONFLICT (id) DO NOTHING`,
		update.MediaItem)
	if err != nil {
		return fmt.Errorf("failed to insert new item: %w", err)
	}

	_, err = tx.Exec(`
	  INSERT INTO playback_entries
	  (media_id, category, created_at, elapsed, status, is_active, updated_at, source)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		update.MediaItem.ID, update.MediaItem.Category, now, elapsed, update.Status, update.Status == StatusPlaying, now, update.MediaItem.Source)
	if err != nil {
		return fmt.Errorf("failed to insert new playback entry: %w", err)
	}

	slog.Debug("Inserted new playback entry", slog.String("media_id", update.MediaItem.ID))

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const historyQuery = `
	  SELECT
	    m.id, m.title, m.subtitle, m.album, m.category, m.duration, m.source, m.image, m.dominant_colours,
	    p.id as playback_id, p.created_at, p.elapsed, p.status, p.is_active, p.updated_at
	  FROM media_items m
	  JOIN playback_entries p ON m.id = p.media_id`

func (s *SqliteStore) History(limit int) ([]HistoryEntry, error) {
	results := []HistoryEntry{}
	err := s.DB.Select(&results, historyQuery+`
	  ORDER BY p.created_at DESC, p.id DESC
	  LIMIT ?`, limit)
	return results, err
}

func (s *SqliteStore) Active() ([]HistoryEntry, error) {
	results := []HistoryEntry{}
	err := s.DB.Select(&results, historyQuery+`
	  WHERE p.is_active = TRUE
	  ORDER BY p.updated_at DESC`)
	return results, err
}
