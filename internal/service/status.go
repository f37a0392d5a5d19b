package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/repository"
)

const statusOnline = "online"

type StatusService struct {
	repo      repository.ReadingRepo
	startedAt time.Time
	now       func() time.Time
	heapBytes func() uint64
}

func NewStatusService(repo repository.ReadingRepo, startedAt time.Time) *StatusService {
	return &StatusService{
		repo:      repo,
		startedAt: startedAt,
		now:       time.Now,
		heapBytes: heapInUse,
	}
}

// Status reflects live state at the moment of the call.
func (s *StatusService) Status(ctx context.Context) models.Status {
	cur, n := s.repo.Snapshot()
	return models.Status{
		Status:       statusOnline,
		Uptime:       s.now().Sub(s.startedAt).Seconds(),
		LastReading:  cur,
		ReadingCount: n,
		MemoryUsed:   formatMB(s.heapBytes()),
	}
}

// formatMB renders a byte count as whole megabytes, e.g. "12 MB".
func formatMB(b uint64) string {
	return fmt.Sprintf("%d MB", int64(math.Round(float64(b)/1024/1024)))
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}
