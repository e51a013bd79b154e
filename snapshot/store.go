package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"github.com/marcus-crane/tunestatus/shared"
)

var (
	snapshotBucket = []byte(shared.SNAPSHOT_BUCKET)
	snapshotKey    = []byte(shared.SNAPSHOT_KEY)
)

// Store holds the last published snapshot under a single key. The file is
// opened for each operation so that the widget process can get at it in
// between writes; bbolt only allows one process to hold it at a time.
type Store struct {
	path    string
	timeout time.Duration
}

func NewStore(path string) *Store {
	return &Store{path: path, timeout: time.Second}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Publish(snap Snapshot) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("error serializing snapshot: %w", err)
	}

	db, err := bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: s.timeout})
	if err != nil {
		return fmt.Errorf("could not open snapshot store: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(snapshotBucket)
		if err != nil {
			return err
		}
		return b.Put(snapshotKey, value)
	})
}

// Load never fails. Anything short of a readable snapshot gives Empty.
func (s *Store) Load() Snapshot {
	snap, err := s.Read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("Falling back to empty snapshot", slog.String("error", err.Error()))
		}
		return Empty()
	}
	return snap
}

var errNoSnapshot = errors.New("no snapshot stored")

// Read opens the store read-only, so it never creates the file.
func (s *Store) Read() (Snapshot, error) {
	if _, err := os.Stat(s.path); err != nil {
		return Snapshot{}, err
	}

	db, err := bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: s.timeout, ReadOnly: true})
	if err != nil {
		return Snapshot{}, fmt.Errorf("could not open snapshot store: %w", err)
	}
	defer db.Close()

	var snap Snapshot
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(snapshotBucket)
		if b == nil {
			return errNoSnapshot
		}
		value := b.Get(snapshotKey)
		if value == nil {
			return errNoSnapshot
		}
		if err := json.Unmarshal(value, &snap); err != nil {
			return fmt.Errorf("error deserializing snapshot: %w", err)
		}
		return nil
	})
	return snap, err
}
