package tracker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/tracker"
)

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(d time.Duration) tracker.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeClock) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Tick moves the clock to now and fires the ticker.
func (f *fakeClock) Tick(t *fakeTicker, now time.Time) {
	f.Set(now)
	t.c <- now
}

func (f *fakeClock) Tickers() []*fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeTicker{}, f.tickers...)
}

func newTestTracker(t *testing.T, now time.Time) (*tracker.Tracker, *fakeClock, chan tracker.Snapshot) {
	t.Helper()

	clock := &fakeClock{now: now}
	updates := make(chan tracker.Snapshot, 10)
	tr, err := tracker.New(tracker.Config{
		Clock:    clock,
		OnUpdate: func(s tracker.Snapshot) { updates <- s },
	})
	require.NoError(t, err)
	t.Cleanup(tr.Stop)

	return tr, clock, updates
}

func TestTrackerActivationComputesImmediately(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	start := now.Add(-3661 * time.Second)
	tr, clock, updates := newTestTracker(t, now)

	tr.Track(context.Background(), tracker.Input{Status: model.TaskStatusInProgress, StartTime: &start, StandardTimeSeconds: 3600})

	snap := <-updates
	assert.Equal(int64(3661), snap.ElapsedSeconds)
	assert.Equal(float64(98), snap.Efficiency)
	assert.Equal(tracker.ClassificationOnTrack, snap.Classification)
	assert.Equal(snap, tr.Snapshot())
	assert.True(tr.Ticking())
	require.Len(clock.Tickers(), 1)
}

func TestTrackerTicksRecomputeFromStart(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	tr, clock, updates := newTestTracker(t, start)

	tr.Track(context.Background(), tracker.Input{Status: model.TaskStatusInProgress, StartTime: &start, StandardTimeSeconds: 100})
	snap := <-updates
	assert.Equal(int64(0), snap.ElapsedSeconds)
	assert.False(snap.HasEfficiency)

	tickers := clock.Tickers()
	require.Len(tickers, 1)
	ticker := tickers[0]

	// Jittered and missed ticks must not drift the elapsed time.
	ticks := []struct {
		at         time.Duration
		expElapsed int64
	}{
		{at: 1100 * time.Millisecond, expElapsed: 1},
		{at: 1900 * time.Millisecond, expElapsed: 1},
		{at: 5 * time.Second, expElapsed: 5},
		{at: 50 * time.Second, expElapsed: 50},
		{at: 200 * time.Second, expElapsed: 200},
	}
	var prev int64
	for _, tick := range ticks {
		clock.Tick(ticker, start.Add(tick.at))
		snap := <-updates
		assert.Equal(tick.expElapsed, snap.ElapsedSeconds)
		assert.GreaterOrEqual(snap.ElapsedSeconds, prev)
		prev = snap.ElapsedSeconds
	}

	snap = tr.Snapshot()
	assert.Equal(float64(50), snap.Efficiency)
	assert.Equal(tracker.ClassificationOverBudget, snap.Classification)
	assert.Equal(float64(100), snap.ProgressPercent)
}

func TestTrackerInactiveDoesNotTick(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	tr, clock, updates := newTestTracker(t, now)

	for _, status := range []model.TaskStatus{model.TaskStatusAvailable, model.TaskStatusDone, model.TaskStatusCompleted, model.TaskStatusRejected} {
		tr.Track(context.Background(), tracker.Input{Status: status, StartTime: &start, StandardTimeSeconds: 3600})
		snap := <-updates
		assert.False(snap.Active)
		assert.Equal(int64(0), snap.ElapsedSeconds)
	}

	assert.False(tr.Ticking())
	assert.Empty(clock.Tickers())
}

func TestTrackerInputChangeReleasesAndResets(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	start := now.Add(-30 * time.Minute)
	tr, clock, updates := newTestTracker(t, now)

	in := tracker.Input{Status: model.TaskStatusInProgress, StartTime: &start, StandardTimeSeconds: 3600}
	tr.Track(context.Background(), in)
	<-updates

	// Same input again keeps the subscription.
	tr.Track(context.Background(), in)
	require.Len(clock.Tickers(), 1)
	assert.False(clock.Tickers()[0].Stopped())

	// A new start time releases the old ticker and starts a new one.
	restart := now.Add(-time.Minute)
	tr.Track(context.Background(), tracker.Input{Status: model.TaskStatusInProgress, StartTime: &restart, StandardTimeSeconds: 3600})
	snap := <-updates
	assert.Equal(int64(60), snap.ElapsedSeconds)
	tickers := clock.Tickers()
	require.Len(tickers, 2)
	assert.True(tickers[0].Stopped())
	assert.False(tickers[1].Stopped())

	// Leaving in progress releases and resets.
	tr.Track(context.Background(), tracker.Input{Status: model.TaskStatusPendingQA, StartTime: &restart, StandardTimeSeconds: 3600})
	snap = <-updates
	assert.Equal(int64(0), snap.ElapsedSeconds)
	assert.False(snap.HasEfficiency)
	assert.True(tickers[1].Stopped())
	assert.False(tr.Ticking())
}

func TestTrackerStopReleases(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	start := now.Add(-time.Minute)
	tr, clock, updates := newTestTracker(t, now)

	tr.Track(context.Background(), tracker.Input{Status: model.TaskStatusInProgress, StartTime: &start, StandardTimeSeconds: 3600})
	<-updates

	tr.Stop()
	require.Len(clock.Tickers(), 1)
	assert.True(clock.Tickers()[0].Stopped())
	assert.False(tr.Ticking())
	assert.Equal(tracker.Snapshot{}, tr.Snapshot())
}

func TestTrackerContextCancelReleases(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	start := now.Add(-time.Minute)
	tr, clock, updates := newTestTracker(t, now)

	ctx, cancel := context.WithCancel(context.Background())
	in := tracker.Input{Status: model.TaskStatusInProgress, StartTime: &start, StandardTimeSeconds: 3600}
	tr.Track(ctx, in)
	<-updates

	cancel()
	assert.Eventually(func() bool { return !tr.Ticking() }, time.Second, 5*time.Millisecond)
	require.Len(clock.Tickers(), 1)
	assert.Eventually(clock.Tickers()[0].Stopped, time.Second, 5*time.Millisecond)

	// Tracking the same input again after the release starts ticking again.
	tr.Track(context.Background(), in)
	<-updates
	assert.True(tr.Ticking())
	assert.Len(clock.Tickers(), 2)
}

func TestTrackerKeepsLastEfficiencyOnZeroElapsed(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	tr, clock, updates := newTestTracker(t, start.Add(30*time.Minute))

	tr.Track(context.Background(), tracker.Input{Status: model.TaskStatusInProgress, StartTime: &start, StandardTimeSeconds: 3600})
	snap := <-updates
	assert.Equal(float64(200), snap.Efficiency)

	require.Len(clock.Tickers(), 1)
	// A clock step back to the start gives zero elapsed, efficiency is not recomputed.
	clock.Tick(clock.Tickers()[0], start)
	snap = <-updates
	assert.Equal(int64(0), snap.ElapsedSeconds)
	assert.True(snap.HasEfficiency)
	assert.Equal(float64(200), snap.Efficiency)
}

func TestTrackerLateTickUsesClock(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	tr, clock, updates := newTestTracker(t, start)

	tr.Track(context.Background(), tracker.Input{Status: model.TaskStatusInProgress, StartTime: &start, StandardTimeSeconds: 60})
	<-updates

	require.Len(clock.Tickers(), 1)
	// The tick fired at +1s but was received at +3s.
	clock.Set(start.Add(3 * time.Second))
	clock.Tickers()[0].c <- start.Add(time.Second)

	snap := <-updates
	assert.Equal(int64(3), snap.ElapsedSeconds)
	assert.Equal(float64(2000), snap.Efficiency)
}
