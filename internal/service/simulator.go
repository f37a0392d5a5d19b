package service

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/metrics"
	"aeroponic_tower/internal/models"
)

// ----------- Simulation ranges -----------
const (
	SimTempMinC   = 20.0 // °C
	SimTempSpanC  = 5.0
	SimHumiMinPct = 50.0 // %
	SimHumiSpan   = 10.0
	SimLumiMinLux = 400 // lux
	SimLumiSpan   = 500

	DefaultSimTick = 3 * time.Second
)

// Sink receives simulated payloads: the in-process ingestion path or a remote
// hub over HTTP.
type Sink interface {
	Send(ctx context.Context, p models.Payload) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, p models.Payload) error

func (f SinkFunc) Send(ctx context.Context, p models.Payload) error { return f(ctx, p) }

// IngestionSink feeds payloads straight into an Ingestion service.
func IngestionSink(in Ingestion) Sink {
	return SinkFunc(func(ctx context.Context, p models.Payload) error {
		_, err := in.Ingest(WithSource(ctx, metrics.SourceSimulator), p)
		return err
	})
}

// SimulatorService fakes the tower's sensor board.
type SimulatorService struct {
	sink Sink
	log  *logger.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatorService returns a simulator sending to sink. log may be nil.
func NewSimulatorService(sink Sink, log *logger.Logger) *SimulatorService {
	return &SimulatorService{
		sink: sink,
		log:  log,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run sends one payload immediately, then one per tick until ctx is canceled.
// Send failures are logged and the loop carries on.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultSimTick
	}
	s.sendOnce(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sendOnce(ctx)
		}
	}
}

func (s *SimulatorService) sendOnce(ctx context.Context) {
	p := s.NextPayload()
	if err := s.sink.Send(ctx, p); err != nil {
		if s.log != nil && ctx.Err() == nil {
			s.log.Warnw("simulator_send_failed", "err", err)
		}
		return
	}
	if s.log != nil {
		s.log.Debugw("simulator_sent", "temp", p[models.KeyTemp], "humi", p[models.KeyHumi], "lumi", p[models.KeyLumi])
	}
}

// NextPayload draws a plausible reading. Temperature and humidity go out as
// one-decimal strings and light as an integer, the way the board reports them.
func (s *SimulatorService) NextPayload() models.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Payload{
		models.KeyTemp: strconv.FormatFloat(SimTempMinC+s.rnd.Float64()*SimTempSpanC, 'f', 1, 64),
		models.KeyHumi: strconv.FormatFloat(SimHumiMinPct+s.rnd.Float64()*SimHumiSpan, 'f', 1, 64),
		models.KeyLumi: SimLumiMinLux + s.rnd.Intn(SimLumiSpan),
	}
}
