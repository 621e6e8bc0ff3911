package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joddb/shopfloor/internal/log"
)

// DefaultPeriod is the default recompute period.
const DefaultPeriod = time.Second

// Config is the tracker configuration.
type Config struct {
	Clock  Clock
	Period time.Duration
	// OnUpdate is called with every new snapshot (on activation and on each tick).
	// It runs on the ticking goroutine so it must not block or call the tracker.
	OnUpdate func(Snapshot)
	Logger   log.Logger
}

func (c *Config) defaults() error {
	if c.Clock == nil {
		c.Clock = RealClock
	}
	if c.Period == 0 {
		c.Period = DefaultPeriod
	}
	if c.Period < 0 {
		return fmt.Errorf("period must be positive")
	}
	if c.OnUpdate == nil {
		c.OnUpdate = func(Snapshot) {}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tracker.Tracker"})
	return nil
}

// Tracker keeps the live snapshot of a single task.
type Tracker struct {
	clock    Clock
	period   time.Duration
	onUpdate func(Snapshot)
	logger   log.Logger

	// trackMu serializes Track and Stop calls.
	trackMu  sync.Mutex
	mu       sync.Mutex
	input    Input
	snapshot Snapshot
	sub      *subscription
}

// New returns a new inert tracker.
func New(cfg Config) (*Tracker, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Tracker{
		clock:    cfg.Clock,
		period:   cfg.Period,
		onUpdate: cfg.OnUpdate,
		logger:   cfg.Logger,
	}, nil
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// release cancels the ticking and waits until the ticking goroutine is gone.
func (s *subscription) release() {
	if s == nil {
		return
	}
	s.cancel()
	<-s.done
}

// Track sets the tracked input. Tracking the same input again is a no-op, any other
// input releases the current subscription and resets the snapshot. If the new input
// is in progress the snapshot is computed right away and ticking starts until the
// context is done, Stop is called or Track is called with different input.
func (t *Tracker) Track(ctx context.Context, in Input) {
	t.trackMu.Lock()
	defer t.trackMu.Unlock()

	t.mu.Lock()
	if t.input.Equal(in) && (t.sub != nil || !in.Active()) {
		t.mu.Unlock()
		return
	}
	sub := t.sub
	t.sub = nil
	t.mu.Unlock()

	sub.release()

	now := t.clock.Now()
	t.mu.Lock()
	t.input = in
	t.snapshot = compute(in, now, Snapshot{})
	snap := t.snapshot
	if !in.Active() {
		t.mu.Unlock()
		t.logger.Debugf("Tracker inactive (status: %s)", in.Status)
		t.onUpdate(snap)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	sub = &subscription{cancel: cancel, done: make(chan struct{})}
	t.sub = sub
	t.mu.Unlock()

	t.logger.Debugf("Tracker activated (start: %s)", in.StartTime.UTC().Format(time.RFC3339))
	t.onUpdate(snap)

	ticker := t.clock.NewTicker(t.period)
	go t.run(ctx, in, ticker, sub)
}

func (t *Tracker) run(ctx context.Context, in Input, ticker Ticker, sub *subscription) {
	defer close(sub.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// The parent context may end without a release call.
			t.mu.Lock()
			if t.sub == sub {
				t.sub = nil
			}
			t.mu.Unlock()

			t.logger.Debugf("Tracker released")
			return
		case <-ticker.C():
			// Recompute from the original start time, never increment. The tick value may
			// be stale when the receive is late, the clock is not.
			now := t.clock.Now()
			t.mu.Lock()
			t.snapshot = compute(in, now, t.snapshot)
			snap := t.snapshot
			t.mu.Unlock()

			t.onUpdate(snap)
		}
	}
}

// Stop releases the current subscription (if any) and resets the tracker to inert.
func (t *Tracker) Stop() {
	t.trackMu.Lock()
	defer t.trackMu.Unlock()

	t.mu.Lock()
	sub := t.sub
	t.sub = nil
	t.mu.Unlock()

	sub.release()

	t.mu.Lock()
	t.input = Input{}
	t.snapshot = Snapshot{}
	t.mu.Unlock()
}

// Snapshot returns the last derived snapshot.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// Ticking returns true while a subscription is held.
func (t *Tracker) Ticking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sub != nil
}
