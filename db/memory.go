package db

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps history for the lifetime of the process. It backs
// headless runs where no database path is usable.
type MemoryStore struct {
	m       sync.Mutex
	media   map[string]MediaItem
	entries []PlaybackEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{media: map[string]MediaItem{}}
}

func (ms *MemoryStore) ApplyMigrations() error {
	return nil
}

func (ms *MemoryStore) Record(update Update) error {
	ms.m.Lock()
	defer ms.m.Unlock()

	update.MediaItem.ID = GenerateMediaID(&update)
	now := time.Now()
	elapsed := int(update.Elapsed.Milliseconds())

	if n := len(ms.entries); n > 0 {
		last := &ms.entries[n-1]
		if last.MediaID == update.MediaItem.ID {
			last.Elapsed = elapsed
			last.Status = update.Status
			last.IsActive = update.Status == StatusPlaying
			last.UpdatedAt = now
			if item := ms.media[last.MediaID]; item.Image == "" && update.MediaItem.Image != "" {
				item.Image = update.MediaItem.Image
				item.DominantColours = update.MediaItem.DominantColours
				ms.media[last.MediaID] = item
			}
			return nil
		}
		last.IsActive = false
		last.Status = StatusStopped
		last.UpdatedAt = now
	}

	if _, ok := ms.media[update.MediaItem.ID]; !ok {
		ms.media[update.MediaItem.ID] = update.MediaItem
	}
	ms.entries = append(ms.entries, PlaybackEntry{
		ID:        len(ms.entries) + 1,
		MediaID:   update.MediaItem.ID,
		Category:  update.MediaItem.Category,
		CreatedAt: now,
		Elapsed:   elapsed,
		Status:    update.Status,
		IsActive:  update.Status == StatusPlaying,
		UpdatedAt: now,
		Source:    update.MediaItem.Source,
	})
	return nil
}

func (ms *MemoryStore) History(limit int) ([]HistoryEntry, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	return ms.collect(limit, false), nil
}

func (ms *MemoryStore) Active() ([]HistoryEntry, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	return ms.collect(0, true), nil
}

func (ms *MemoryStore) Close() error {
	return nil
}

func (ms *MemoryStore) collect(limit int, activeOnly bool) []HistoryEntry {
	results := []HistoryEntry{}
	for _, e := range ms.entries {
		if activeOnly && !e.IsActive {
			continue
		}
		m := ms.media[e.MediaID]
		results = append(results, HistoryEntry{
			ID:              m.ID,
			Title:           m.Title,
			Subtitle:        m.Subtitle,
			Album:           m.Album,
			Category:        m.Category,
			Duration:        m.Duration,
			Source:          m.Source,
			Image:           m.Image,
			DominantColours: m.DominantColours,
			PlaybackID:      e.ID,
			CreatedAt:       e.CreatedAt,
			Elapsed:         e.Elapsed,
			Status:          e.Status,
			IsActive:        e.IsActive,
			UpdatedAt:       e.UpdatedAt,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PlaybackID > results[j].PlaybackID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
