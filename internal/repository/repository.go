package repository

import (
	"time"

	"aeroponic_tower/internal/models"
)

// DefaultCapacity is the number of history entries kept when none is configured.
const DefaultCapacity = 200

// ReadingRepo holds the current reading and the bounded, newest-first history.
// Implementations must serialize Append against readers so that a reader sees
// the current/history pair either before or after an append, never in between.
type ReadingRepo interface {
	Append(r models.Reading) models.HistoryEntry
	Current() models.Reading
	History(limit int) []models.HistoryEntry
	Snapshot() (current models.Reading, count int)
}

// Options tunes NewRepository. Zero values fall back to defaults.
type Options struct {
	Capacity int
	Initial  models.Reading
	Now      func() time.Time
}

type Repository struct {
	Readings ReadingRepo
}

func NewRepository(opts Options) *Repository {
	return &Repository{
		Readings: NewReadingMemory(opts.Capacity, opts.Initial, opts.Now),
	}
}
