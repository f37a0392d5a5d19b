package repository

import (
	"sync"
	"time"

	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/ringbuf"
)

// ReadingMemory is the process-wide in-memory ReadingRepo. Nothing survives a
// restart.
type ReadingMemory struct {
	mu      sync.RWMutex
	current models.Reading
	history *ringbuf.Ring[models.HistoryEntry]
	now     func() time.Time
}

// Ensure implementation of ReadingRepo at compile time.
var _ ReadingRepo = (*ReadingMemory)(nil)

// NewReadingMemory returns a store seeded with initial as the current reading
// and an empty history of the given capacity (DefaultCapacity when <= 0).
func NewReadingMemory(capacity int, initial models.Reading, now func() time.Time) *ReadingMemory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &ReadingMemory{
		current: initial,
		history: ringbuf.New[models.HistoryEntry](capacity),
		now:     now,
	}
}

// Append makes r the current reading and records it at the head of history,
// evicting the oldest entry once capacity is exceeded.
func (s *ReadingMemory) Append(r models.Reading) models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := models.HistoryEntry{Reading: r, Timestamp: s.now().UnixMilli()}
	s.current = r
	s.history.Push(entry)
	return entry
}

// Current returns a copy of the latest accepted reading.
func (s *ReadingMemory) Current() models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// History returns up to limit entries newest first; limit <= 0 returns all.
func (s *ReadingMemory) History(limit int) []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Newest(limit)
}

// Snapshot returns the current reading and the history size under one lock.
func (s *ReadingMemory) Snapshot() (models.Reading, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.history.Len()
}

// Capacity reports the maximum history size.
func (s *ReadingMemory) Capacity() int {
	return s.history.Cap()
}
