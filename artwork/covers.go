package artwork

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidCover = errors.New("invalid cover name")

// CoverStore keeps encoded covers on disk so the local API can serve them
// by the location recorded in history.
type CoverStore struct {
	dir string
}

func NewCoverStore(dir string) *CoverStore {
	return &CoverStore{dir: dir}
}

// Save writes art under the filename derived from its location. Existing
// files are left alone since the name is a hash of the contents.
func (s *CoverStore) Save(art *Artwork) error {
	if art.Location == "" {
		return nil
	}
	path := filepath.Join(s.dir, filepath.Base(art.Location))
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, art.JPEG, 0644)
}

// Load reads a cover by its file name, such as cover.<guid>.jpeg.
func (s *CoverStore) Load(name string) ([]byte, string, error) {
	segments := strings.Split(name, ".")
	if len(segments) != 3 || segments[0] != "cover" {
		return nil, "", ErrInvalidCover
	}
	if _, err := uuid.Parse(segments[1]); err != nil {
		return nil, "", ErrInvalidCover
	}
	extension := segments[2]
	if extension != "jpeg" {
		return nil, "", ErrInvalidCover
	}
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, "", err
	}
	return b, fmt.Sprintf("image/%s", extension), nil
}

// Prune removes covers not modified within maxAge and returns how many
// were removed.
func (s *CoverStore) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "cover.") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
