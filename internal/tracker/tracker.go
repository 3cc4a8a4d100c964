// Package tracker runs recompute passes against a store: read a snapshot,
// evaluate it, write the result and hand back the events to deliver.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/schedule"
)

// Store is the persistence a tracker needs. *storage.Storage implements it.
type Store interface {
	LoadSnapshot(ctx context.Context, asOf time.Time) (achievement.Snapshot, error)
	ApplyPass(ctx context.Context, instances []models.AchievementInstance, events []models.AchievementEvent, now time.Time) ([]models.AchievementEvent, error)
	ListSchedules(ctx context.Context) ([]models.WorkoutSchedule, error)
	SetNextRun(ctx context.Context, workoutID string, next *time.Time) error
}

type Tracker struct {
	mu       sync.Mutex
	store    Store
	engine   *achievement.Engine
	loc      *time.Location
	attempts int
	delay    time.Duration
	now      func() time.Time
	logger   *log.Logger
}

type Option func(*Tracker)

// WithRetry sets how many times a failed pass is attempted and the base delay
// between attempts. Attempt n waits n*delay before running again.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(t *Tracker) {
		if attempts > 0 {
			t.attempts = attempts
		}
		if delay >= 0 {
			t.delay = delay
		}
	}
}

// WithLocation sets the time zone schedule reminders are armed in.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func New(store Store, engine *achievement.Engine, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		engine:   engine,
		loc:      time.UTC,
		attempts: 1,
		now:      time.Now,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Outcome summarizes one successful pass.
type Outcome struct {
	AsOf      time.Time
	Instances []models.AchievementInstance
	Delivered []models.AchievementEvent
	Spawned   int
}

// Recompute runs a full pass as of now. Passes never overlap within a tracker.
// A failed attempt leaves nothing behind, so the whole pass is retried.
func (t *Tracker) Recompute(ctx context.Context) (*Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Stored times have second precision; a pass must read what it will write.
	asOf := t.now().UTC().Truncate(time.Second)

	var lastErr error
	for attempt := 1; attempt <= t.attempts; attempt++ {
		out, err := t.pass(ctx, asOf)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) || attempt == t.attempts {
			break
		}

		delay := t.backoffDelay(attempt)
		t.logger.Printf("recompute attempt %d/%d failed: %v; retrying in %s", attempt, t.attempts, err, delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("recompute as of %s: %w", asOf.Format(time.RFC3339), lastErr)
}

func (t *Tracker) pass(ctx context.Context, asOf time.Time) (*Outcome, error) {
	snap, err := t.store.LoadSnapshot(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	res, err := t.engine.Recompute(ctx, snap)
	if err != nil {
		return nil, err
	}
	delivered, err := t.store.ApplyPass(ctx, res.Instances, res.Events, asOf)
	if err != nil {
		return nil, fmt.Errorf("saving pass: %w", err)
	}
	t.logger.Printf("pass as of %s delivered %d of %d events", asOf.Format(time.RFC3339), len(delivered), len(res.Events))
	return &Outcome{
		AsOf:      asOf,
		Instances: res.Instances,
		Delivered: delivered,
		Spawned:   res.Spawned,
	}, nil
}

// backoffDelay grows linearly with the attempt number.
func (t *Tracker) backoffDelay(attempt int) time.Duration {
	return time.Duration(attempt) * t.delay
}

// An unknown metric fails the same way every time, and a cancelled context
// will not come back.
func retryable(err error) bool {
	switch {
	case errors.Is(err, achievement.ErrUnknownMetric),
		errors.Is(err, achievement.ErrUnknownGoalKind),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// Armed is the next run stored for a schedule; Next is nil when it was cleared.
type Armed struct {
	WorkoutID string
	Next      *time.Time
}

// ArmSchedules stores the next reminder of every schedule. Disabled schedules
// and schedules without weekdays get their next run cleared.
func (t *Tracker) ArmSchedules(ctx context.Context) ([]Armed, error) {
	schedules, err := t.store.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}

	now := t.now()
	armed := make([]Armed, 0, len(schedules))
	for _, s := range schedules {
		var next *time.Time
		if at, ok := schedule.Next(s, now, t.loc); ok {
			at = at.UTC()
			next = &at
		}
		if err := t.store.SetNextRun(ctx, s.WorkoutID, next); err != nil {
			return armed, fmt.Errorf("arming %s: %w", s.WorkoutID, err)
		}
		armed = append(armed, Armed{WorkoutID: s.WorkoutID, Next: next})
	}
	return armed, nil
}
