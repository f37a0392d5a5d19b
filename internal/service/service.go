package service

import (
	"context"
	"time"

	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/repository"
)

// Ingestion validates, coerces and stores readings sent by the device.
type Ingestion interface {
	Ingest(ctx context.Context, p models.Payload) (models.Reading, error)
}

// Readings exposes read-only access to the current reading and history.
type Readings interface {
	Current(ctx context.Context) models.Reading
	History(ctx context.Context, limit int) []models.HistoryEntry
}

// Diagnostics reports live process status.
type Diagnostics interface {
	Status(ctx context.Context) models.Status
}

// Simulator runs the background loop that fakes a device.
// Stop via context cancellation for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Ingestion
	Readings
	Diagnostics
	Simulator
}

// Options carries what NewService cannot derive from the repositories.
type Options struct {
	Clock     Clock
	StartedAt time.Time
	Log       *logger.Logger
}

// NewService wires the repository layer into concrete services. The in-process
// simulator feeds the same ingestion path as HTTP.
func NewService(repos *repository.Repository, opts Options) *Service {
	if opts.StartedAt.IsZero() {
		opts.StartedAt = time.Now()
	}
	ingestion := NewIngestionService(repos.Readings, opts.Clock)
	return &Service{
		Ingestion:   ingestion,
		Readings:    NewReadingService(repos.Readings),
		Diagnostics: NewStatusService(repos.Readings, opts.StartedAt),
		Simulator:   NewSimulatorService(IngestionSink(ingestion), opts.Log),
	}
}
