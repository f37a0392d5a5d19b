package dashboard

import (
	"context"
	"sync"
	"time"

	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/ringbuf"
)

const (
	DefaultInterval = 5 * time.Second
	HistorySize     = 20

	// MaxFailures consecutive failed polls are tolerated before the hub is
	// shown as disconnected.
	MaxFailures = 3

	timeLayout = "02/01/2006 15:04:05"
)

// Fetcher returns the hub's current reading.
type Fetcher interface {
	Current(ctx context.Context) (models.Reading, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (models.Reading, error)

func (f FetcherFunc) Current(ctx context.Context) (models.Reading, error) { return f(ctx) }

// Entry is one history row of a metric.
type Entry struct {
	When  string
	Value float64
	Band  Band
}

// State is a copy of the poller state, safe to keep.
type State struct {
	Connected bool
	Failures  int
	HasLast   bool
	Last      models.Reading
	LastErr   error
	PolledAt  time.Time
	// History per metric, newest first.
	History [metricCount][]Entry
}

// Options tunes NewPoller. Zero values fall back to defaults.
type Options struct {
	Interval time.Duration
	Now      func() time.Time
	Log      *logger.Logger
	// OnUpdate, when set, is called after every poll with the new state.
	OnUpdate func(State)
}

// Poller drives the dashboard state from successive fetches.
type Poller struct {
	fetch    Fetcher
	interval time.Duration
	now      func() time.Time
	log      *logger.Logger
	onUpdate func(State)

	mu        sync.Mutex
	connected bool
	failures  int
	hasLast   bool
	last      models.Reading
	lastErr   error
	polledAt  time.Time
	history   [metricCount]*ringbuf.Ring[Entry]
}

func NewPoller(f Fetcher, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	p := &Poller{
		fetch:    f,
		interval: opts.Interval,
		now:      opts.Now,
		log:      opts.Log,
		onUpdate: opts.OnUpdate,
	}
	for _, m := range Metrics {
		p.history[m] = ringbuf.New[Entry](HistorySize)
	}
	return p
}

// Interval returns the polling period.
func (p *Poller) Interval() time.Duration { return p.interval }

// Run polls once immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	_ = p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.log.Infow("dashboard_poller_stopped")
			return
		case <-ticker.C:
			_ = p.Poll(ctx)
		}
	}
}

// Poll performs one fetch and folds its outcome into the state. The fetch
// error, if any, is returned after being recorded.
func (p *Poller) Poll(ctx context.Context) error {
	r, err := p.fetch.Current(ctx)

	p.mu.Lock()
	p.polledAt = p.now()
	if err != nil {
		p.recordFailure(err)
	} else {
		p.recordSuccess(r)
	}
	st := p.snapshotLocked()
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(st)
	}
	return err
}

func (p *Poller) recordFailure(err error) {
	p.failures++
	p.lastErr = err
	if p.failures > MaxFailures && p.connected {
		p.connected = false
		p.log.Warnw("dashboard_disconnected", "failures", p.failures, "err", err)
		return
	}
	p.log.Debugw("dashboard_poll_failed", "failures", p.failures, "err", err)
}

func (p *Poller) recordSuccess(r models.Reading) {
	if !p.connected {
		p.log.Infow("dashboard_connected")
	}
	p.failures = 0
	p.lastErr = nil
	p.connected = true
	p.last = r
	p.hasLast = true

	when := r.CapturedAt
	if when == "" {
		when = p.polledAt.Format(timeLayout)
	}
	values := [metricCount]float64{r.Temperature, r.Humidity, float64(r.Light)}
	for _, m := range Metrics {
		p.history[m].Push(Entry{When: when, Value: values[m], Band: Classify(m, values[m])})
	}
}

// Snapshot returns a copy of the current state.
func (p *Poller) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() State {
	st := State{
		Connected: p.connected,
		Failures:  p.failures,
		HasLast:   p.hasLast,
		Last:      p.last,
		LastErr:   p.lastErr,
		PolledAt:  p.polledAt,
	}
	for _, m := range Metrics {
		st.History[m] = p.history[m].Newest(0)
	}
	return st
}
