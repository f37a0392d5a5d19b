package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aeroponic_tower/internal/models"
)

// scriptedFetcher returns queued outcomes in order, then repeats the last one.
type scriptedFetcher struct {
	mu    sync.Mutex
	steps []fetchStep
	calls int
}

type fetchStep struct {
	r   models.Reading
	err error
}

func (f *scriptedFetcher) Current(ctx context.Context) (models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	f.calls++
	return f.steps[i].r, f.steps[i].err
}

var errDown = errors.New("hub unreachable")

func ok(temp float64, at string) fetchStep {
	return fetchStep{r: models.Reading{Temperature: temp, Humidity: 60, Light: 500, CapturedAt: at}}
}

func fail() fetchStep { return fetchStep{err: errDown} }

func fixedNow() time.Time { return time.Date(2025, 6, 14, 9, 30, 5, 0, time.Local) }

func TestPoller_DisconnectAfterFourFailuresAndRecover(t *testing.T) {
	f := &scriptedFetcher{steps: []fetchStep{
		ok(21, "a"),
		fail(), fail(), fail(), fail(),
		ok(22, "b"),
	}}
	p := NewPoller(f, Options{Now: fixedNow})
	ctx := context.Background()

	require.NoError(t, p.Poll(ctx))
	assert.True(t, p.Snapshot().Connected)

	for i := 1; i <= 3; i++ {
		assert.ErrorIs(t, p.Poll(ctx), errDown)
		st := p.Snapshot()
		assert.True(t, st.Connected, "still connected after %d failures", i)
		assert.Equal(t, i, st.Failures)
	}

	assert.ErrorIs(t, p.Poll(ctx), errDown)
	st := p.Snapshot()
	assert.False(t, st.Connected, "fourth failure disconnects")
	assert.Len(t, st.History[Temperature], 1, "failures append nothing")
	assert.True(t, st.HasLast)
	assert.Equal(t, 21.0, st.Last.Temperature, "last good reading is kept")

	require.NoError(t, p.Poll(ctx))
	st = p.Snapshot()
	assert.True(t, st.Connected)
	assert.Zero(t, st.Failures)
	assert.NoError(t, st.LastErr)
	require.Len(t, st.History[Temperature], 2)
	assert.Equal(t, 22.0, st.History[Temperature][0].Value, "history resumes newest first")
	assert.Equal(t, "b", st.History[Temperature][0].When)
}

func TestPoller_FailuresBeforeFirstSuccess(t *testing.T) {
	p := NewPoller(&scriptedFetcher{steps: []fetchStep{fail()}}, Options{})
	for i := 0; i < 5; i++ {
		_ = p.Poll(context.Background())
	}
	st := p.Snapshot()
	assert.False(t, st.Connected)
	assert.False(t, st.HasLast)
	assert.Equal(t, 5, st.Failures)
	for _, m := range Metrics {
		assert.Empty(t, st.History[m])
	}
}

func TestPoller_HistoryBoundedNewestFirst(t *testing.T) {
	var steps []fetchStep
	for i := 0; i < HistorySize+7; i++ {
		steps = append(steps, ok(float64(i), ""))
	}
	p := NewPoller(&scriptedFetcher{steps: steps}, Options{Now: fixedNow})
	for range steps {
		require.NoError(t, p.Poll(context.Background()))
	}

	st := p.Snapshot()
	for _, m := range Metrics {
		assert.Len(t, st.History[m], HistorySize)
	}
	temps := st.History[Temperature]
	assert.Equal(t, float64(HistorySize+6), temps[0].Value)
	assert.Equal(t, 7.0, temps[HistorySize-1].Value)
	assert.Equal(t, "14/06/2025 09:30:05", temps[0].When, "empty capturedAt falls back to poll time")
	assert.Equal(t, BandLow, temps[HistorySize-1].Band)
	assert.Equal(t, BandNormal, st.History[Light][0].Band)
}

func TestPoller_OnUpdate(t *testing.T) {
	var got []State
	p := NewPoller(&scriptedFetcher{steps: []fetchStep{ok(30, "x"), fail()}}, Options{
		OnUpdate: func(st State) { got = append(got, st) },
	})
	_ = p.Poll(context.Background())
	_ = p.Poll(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, BandHigh, got[0].History[Temperature][0].Band)
	assert.Equal(t, 1, got[1].Failures)
}

func TestPoller_SnapshotIsACopy(t *testing.T) {
	p := NewPoller(&scriptedFetcher{steps: []fetchStep{ok(20, "a")}}, Options{})
	require.NoError(t, p.Poll(context.Background()))

	st := p.Snapshot()
	st.History[Temperature][0].Value = 99
	assert.Equal(t, 20.0, p.Snapshot().History[Temperature][0].Value)
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	polls := make(chan struct{}, 16)
	f := FetcherFunc(func(ctx context.Context) (models.Reading, error) {
		select {
		case polls <- struct{}{}:
		default:
		}
		return models.Reading{Temperature: 20}, nil
	})
	p := NewPoller(f, Options{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-polls:
		case <-time.After(time.Second):
			t.Fatalf("poll %d never happened", i+1)
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, p.Snapshot().Connected)
}
