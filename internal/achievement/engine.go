// Package achievement evaluates achievement definitions and user goals against
// workout history. A recompute pass is a pure function of its Snapshot: it is
// re-run from scratch whenever history changes and returns the full instance
// set plus the events observed in that pass.
package achievement

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/misterclayt0n/podium/internal/models"
	"golang.org/x/sync/errgroup"
)

type Engine struct {
	loc               *time.Location
	unit              string
	deadlineThreshold time.Duration
	newID             func() string
	logger            *log.Logger
	parallelism       int
}

type Option func(*Engine)

// WithLocation sets the time zone calendar days are counted in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithCanonicalUnit sets the unit weights are converted to before aggregation.
func WithCanonicalUnit(unit string) Option {
	return func(e *Engine) { e.unit = unit }
}

func WithDeadlineThreshold(d time.Duration) Option {
	return func(e *Engine) { e.deadlineThreshold = d }
}

// WithIDGenerator replaces uuid.NewString for spawned instances.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithParallelism bounds how many definitions are evaluated at once.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		loc:               time.UTC,
		unit:              models.UnitKilograms,
		deadlineThreshold: DefaultDeadlineThreshold,
		newID:             uuid.NewString,
		logger:            log.New(io.Discard, "", 0),
		parallelism:       runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot is everything one pass reads. It must come from a single consistent read.
type Snapshot struct {
	AsOf        time.Time
	History     models.History
	Definitions []models.AchievementDefinition
	Goals       []models.UserGoal
	Instances   []models.AchievementInstance
}

type Result struct {
	Instances []models.AchievementInstance
	Events    []models.AchievementEvent
	Spawned   int
}

// subject is one definition (catalog entry or translated goal) and its instances.
type subject struct {
	def         models.AchievementDefinition
	instances   []models.AchievementInstance
	isGoal      bool
	goalCreated time.Time
}

type subjectResult struct {
	instances []models.AchievementInstance
	events    []models.AchievementEvent
	spawned   int
}

// Recompute runs one full pass. Definitions are independent, so they are
// evaluated concurrently; the result order is deterministic regardless.
func (e *Engine) Recompute(ctx context.Context, snap Snapshot) (*Result, error) {
	subjects, orphans, err := e.subjects(snap)
	if err != nil {
		return nil, err
	}

	// Ids are drawn in subject order so a custom generator is never called
	// concurrently and spawned ids do not depend on scheduling. A repeatable
	// definition seen for the first time may spawn twice: its first round and,
	// when that completes at once, the round that follows it.
	ids := make([][]string, len(subjects))
	for i, s := range subjects {
		switch {
		case len(s.instances) == 0 && s.def.Repeatable:
			ids[i] = []string{e.newID(), e.newID()}
		case len(s.instances) == 0 || s.def.Repeatable:
			ids[i] = []string{e.newID()}
		}
	}

	results := make([]subjectResult, len(subjects))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range subjects {
		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r, err := e.evaluateSubject(subjects[i], ids[i], snap)
			if err != nil {
				return fmt.Errorf("definition %s: %w", subjects[i].def.ID, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, r := range results {
		res.Instances = append(res.Instances, r.instances...)
		res.Events = append(res.Events, r.events...)
		res.Spawned += r.spawned
	}
	res.Instances = append(res.Instances, orphans...)

	e.logger.Printf("recompute as of %s: %d definitions, %d instances (%d new), %d events",
		snap.AsOf.Format(time.RFC3339), len(subjects), len(res.Instances), res.Spawned, len(res.Events))
	return res, nil
}

func (e *Engine) subjects(snap Snapshot) ([]subject, []models.AchievementInstance, error) {
	byDefinition := make(map[string][]models.AchievementInstance)
	for _, inst := range snap.Instances {
		byDefinition[inst.DefinitionID] = append(byDefinition[inst.DefinitionID], inst)
	}

	defs := append([]models.AchievementDefinition(nil), snap.Definitions...)
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].SortOrder != defs[j].SortOrder {
			return defs[i].SortOrder < defs[j].SortOrder
		}
		return defs[i].ID < defs[j].ID
	})

	var subjects []subject
	claimed := make(map[string]bool)
	for _, def := range defs {
		if !Supported(def.Metric) {
			return nil, nil, fmt.Errorf("definition %s: %w: %q", def.ID, ErrUnknownMetric, def.Metric)
		}
		if claimed[def.ID] || IsGoalDefinition(def.ID) {
			e.logger.Printf("skipping duplicate or reserved definition id %s", def.ID)
			continue
		}
		claimed[def.ID] = true
		subjects = append(subjects, subject{def: def, instances: byDefinition[def.ID]})
	}

	goals := append([]models.UserGoal(nil), snap.Goals...)
	sort.SliceStable(goals, func(i, j int) bool {
		if !goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
			return goals[i].CreatedAt.Before(goals[j].CreatedAt)
		}
		return goals[i].ID < goals[j].ID
	})
	for _, g := range goals {
		def, err := GoalDefinition(g)
		if err != nil {
			return nil, nil, err
		}
		if claimed[def.ID] {
			continue
		}
		claimed[def.ID] = true
		subjects = append(subjects, subject{def: def, instances: byDefinition[def.ID], isGoal: true, goalCreated: g.CreatedAt})
	}

	// Instances whose definition left the catalog are carried through untouched.
	var orphans []models.AchievementInstance
	for _, inst := range snap.Instances {
		if !claimed[inst.DefinitionID] {
			orphans = append(orphans, inst)
		}
	}
	sort.SliceStable(orphans, func(i, j int) bool { return orphans[i].ID < orphans[j].ID })
	return subjects, orphans, nil
}

func (e *Engine) evaluateSubject(s subject, spawnIDs []string, snap Snapshot) (subjectResult, error) {
	instances := append([]models.AchievementInstance(nil), s.instances...)
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Status.IsTerminal() != b.Status.IsTerminal() {
			return a.Status.IsTerminal()
		}
		return a.ID < b.ID
	})

	// An open round that follows a completed one only counts its own history.
	followUp := false
	for _, inst := range instances {
		if inst.Status.IsTerminal() {
			followUp = true
			break
		}
	}

	var res subjectResult
	for _, inst := range instances {
		next, events, err := e.advance(s, inst, followUp, snap)
		if err != nil {
			return res, err
		}
		res.instances = append(res.instances, next)
		res.events = append(res.events, events...)
	}

	for _, id := range spawnIDs {
		if !e.needsSpawn(s, res.instances) {
			break
		}
		fresh := models.AchievementInstance{
			ID:           id,
			DefinitionID: s.def.ID,
			CreatedAt:    snap.AsOf,
			Status:       models.StatusLocked,
		}
		if s.isGoal {
			fresh.CreatedAt = s.goalCreated
		}
		next, events, err := e.advance(s, fresh, len(res.instances) > 0, snap)
		if err != nil {
			return res, err
		}
		res.instances = append(res.instances, next)
		res.events = append(res.events, events...)
		res.spawned++
	}
	return res, nil
}

// needsSpawn allows a new instance only when none exists yet, or when the
// definition is repeatable and every existing instance is COMPLETED.
func (e *Engine) needsSpawn(s subject, instances []models.AchievementInstance) bool {
	if len(instances) == 0 {
		return true
	}
	if !s.def.Repeatable {
		return false
	}
	for _, inst := range instances {
		if !inst.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// advance evaluates one instance. Follow-up rounds of a repeatable definition and
// all goal instances only count history from their own creation.
func (e *Engine) advance(s subject, inst models.AchievementInstance, followUp bool, snap Snapshot) (models.AchievementInstance, []models.AchievementEvent, error) {
	if inst.Status.IsTerminal() {
		return inst, nil, nil
	}

	meta := inst.Metadata.Merge(s.def.Metadata)
	window := Window{AsOf: snap.AsOf, Days: s.def.WindowDays}
	var scope Scope
	if meta != nil {
		if meta.WindowDays != nil {
			window.Days = meta.WindowDays
		}
		scope = Scope{ExerciseName: meta.ExerciseName, WorkoutID: meta.WorkoutID, Secondary: meta.SecondaryTarget}
	}
	if s.isGoal || (s.def.Repeatable && followUp) {
		since := inst.CreatedAt
		window.Since = &since
	}

	ev, err := Evaluate(s.def.Metric, snap.History, window, scope, EvalOptions{Location: e.loc, CanonicalUnit: e.unit})
	if err != nil {
		return inst, nil, err
	}
	progress := ComputeProgress(ev.Value, s.def.TargetValue, MetricUnit(s.def.Metric, e.unit))
	keepBest := s.def.Metric.Monotonic() && window.Days == nil

	next := Advance(inst, ev, progress, keepBest, snap.AsOf)
	return next, Emit(s.def, inst, next, snap.AsOf, e.deadlineThreshold), nil
}
