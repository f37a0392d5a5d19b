package service

import (
	"context"

	"aeroponic_tower/internal/coerce"
	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/repository"
)

type ReadingService struct {
	repo repository.ReadingRepo
}

func NewReadingService(repo repository.ReadingRepo) *ReadingService {
	return &ReadingService{repo: repo}
}

// Current returns the latest accepted reading (all zero before the first one).
func (s *ReadingService) Current(ctx context.Context) models.Reading {
	return s.repo.Current()
}

// History returns up to limit entries newest first; limit <= 0 means all.
func (s *ReadingService) History(ctx context.Context, limit int) []models.HistoryEntry {
	return s.repo.History(limit)
}

// ParseLimit reads a history limit from a query value. Leading digits are
// used ("3abc" is 3); an absent or unreadable value is 0, meaning no limit.
func ParseLimit(raw string) int {
	n := coerce.Int(raw, 0)
	if n < 0 {
		return 0
	}
	return n
}
