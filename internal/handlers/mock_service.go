package handlers

import (
	"context"
	"sync"

	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockIngestion struct {
	reading models.Reading
	err     error
	panicOn bool

	calls       int
	lastPayload models.Payload
	lastSource  string
}

func (m *mockIngestion) Ingest(ctx context.Context, p models.Payload) (models.Reading, error) {
	m.calls++
	m.lastPayload = p
	m.lastSource = service.SourceFrom(ctx)
	if m.panicOn {
		panic("ingest exploded")
	}
	return m.reading, m.err
}

type mockReadings struct {
	mu        sync.Mutex
	current   models.Reading
	history   []models.HistoryEntry
	lastLimit int
}

func (m *mockReadings) Current(ctx context.Context) models.Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *mockReadings) History(ctx context.Context, limit int) []models.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	return m.history
}

func (m *mockReadings) set(r models.Reading) {
	m.mu.Lock()
	m.current = r
	m.mu.Unlock()
}

type mockDiagnostics struct {
	status models.Status
}

func (m *mockDiagnostics) Status(ctx context.Context) models.Status {
	return m.status
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}
