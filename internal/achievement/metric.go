package achievement

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/utils"
)

var ErrUnknownMetric = errors.New("unknown metric type")

const (
	defaultEarlyBirdHour = 7.0
	adherenceGraceDays   = 1
)

// Window bounds an evaluation to [max(AsOf-Days, Since), AsOf].
// A nil Days means the whole history up to AsOf.
type Window struct {
	AsOf  time.Time
	Days  *int
	Since *time.Time
}

// Start returns the inclusive lower bound, if any.
func (w Window) Start() (time.Time, bool) {
	var start time.Time
	bounded := false
	if w.Days != nil {
		start = w.AsOf.Add(-time.Duration(*w.Days) * 24 * time.Hour)
		bounded = true
	}
	if w.Since != nil && (!bounded || w.Since.After(start)) {
		start = *w.Since
		bounded = true
	}
	return start, bounded
}

func (w Window) Contains(t time.Time) bool {
	if t.After(w.AsOf) {
		return false
	}
	if start, ok := w.Start(); ok && t.Before(start) {
		return false
	}
	return true
}

// Scope narrows set based metrics to one exercise or sessions of one workout.
type Scope struct {
	ExerciseName string
	WorkoutID    string
	Secondary    *float64
}

type EvalOptions struct {
	Location      *time.Location
	CanonicalUnit string
}

// Evaluation is a raw metric value. Meaningful is false until the history holds
// any data the metric could ever count, which keeps instances LOCKED.
type Evaluation struct {
	Value      float64
	Meaningful bool
}

type evalInput struct {
	sessions    []models.TrainingSession // completed sessions up to AsOf, oldest first
	bodyWeights []models.BodyWeightEntry
	schedules   []models.WorkoutSchedule
	window      Window
	scope       Scope
	loc         *time.Location
	unit        string
}

type metricFunc func(in evalInput) Evaluation

var evaluators = map[models.MetricType]metricFunc{
	models.MetricWorkoutsPerWeek:    countWorkouts,
	models.MetricWorkoutsPerMonth:   countWorkouts,
	models.MetricTotalWorkouts:      countWorkouts,
	models.MetricTotalSets:          totalSets,
	models.MetricTotalDuration:      totalDuration,
	models.MetricStreakActiveDays:   longestStreak,
	models.MetricCurrentStreak:      currentStreak,
	models.MetricTotalVolume:        totalVolume,
	models.MetricMaxWeight:          maxWeight,
	models.MetricMaxReps:            maxReps,
	models.MetricOneRMTarget:        bestOneRM,
	models.MetricBodyWeightRelation: bodyWeightRelation,
	models.MetricEarlyBird:          earlyBird,
	models.MetricScheduleAdherence:  scheduleAdherence,
	models.MetricVarietyBalance:     varietyBalance,
	models.MetricHeatmapDays:        heatmapDays,
}

// Supported reports whether metric has an evaluator.
func Supported(metric models.MetricType) bool {
	_, ok := evaluators[metric]
	return ok
}

// Evaluate computes the raw value of metric over h. It never fails on sparse or
// empty history; the only error is a metric with no evaluator.
func Evaluate(metric models.MetricType, h models.History, w Window, scope Scope, opts EvalOptions) (Evaluation, error) {
	fn, ok := evaluators[metric]
	if !ok {
		return Evaluation{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}

	in := evalInput{
		sessions:    completedSessions(h.Sessions, w.AsOf),
		bodyWeights: h.BodyWeights,
		schedules:   h.Schedules,
		window:      w,
		scope:       scope,
		loc:         opts.Location,
		unit:        opts.CanonicalUnit,
	}
	if in.loc == nil {
		in.loc = time.UTC
	}
	if u, ok := utils.NormalizeUnit(in.unit); ok {
		in.unit = u
	}

	ev := fn(in)
	if math.IsNaN(ev.Value) || math.IsInf(ev.Value, 0) {
		ev.Value = 0
	}
	return ev, nil
}

// MetricUnit is the label shown next to a metric's value.
func MetricUnit(metric models.MetricType, canonicalUnit string) string {
	switch metric {
	case models.MetricWorkoutsPerWeek, models.MetricWorkoutsPerMonth, models.MetricTotalWorkouts, models.MetricEarlyBird:
		return "workouts"
	case models.MetricTotalSets:
		return "sets"
	case models.MetricTotalDuration:
		return "min"
	case models.MetricStreakActiveDays, models.MetricCurrentStreak, models.MetricHeatmapDays:
		return "days"
	case models.MetricTotalVolume, models.MetricMaxWeight, models.MetricOneRMTarget:
		if u, ok := utils.NormalizeUnit(canonicalUnit); ok {
			return u
		}
		return models.UnitKilograms
	case models.MetricMaxReps:
		return "reps"
	case models.MetricBodyWeightRelation:
		return "xBW"
	case models.MetricScheduleAdherence:
		return "%"
	case models.MetricVarietyBalance:
		return "categories"
	}
	return ""
}

func completedSessions(all []models.TrainingSession, asOf time.Time) []models.TrainingSession {
	out := make([]models.TrainingSession, 0, len(all))
	for _, s := range all {
		if s.Completed() && !s.StartTime.After(asOf) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (in evalInput) windowed() []models.TrainingSession {
	var out []models.TrainingSession
	for _, s := range in.sessions {
		if in.window.Contains(s.StartTime) {
			out = append(out, s)
		}
	}
	return out
}

func sameExercise(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// eachSet calls fn for every set of the scoped exercise (or all exercises).
func (in evalInput) eachSet(sessions []models.TrainingSession, fn func(se models.SessionExercise, set models.ExerciseSet)) {
	for _, s := range sessions {
		for _, se := range s.Exercises {
			if in.scope.ExerciseName != "" && !sameExercise(se.Exercise.Name, in.scope.ExerciseName) {
				continue
			}
			for _, set := range se.Sets {
				fn(se, set)
			}
		}
	}
}

func (in evalInput) hasSessions() bool {
	return len(in.sessions) > 0
}

// hasExerciseData reports whether any set of the scoped exercise was ever logged.
func (in evalInput) hasExerciseData() bool {
	found := false
	in.eachSet(in.sessions, func(_ models.SessionExercise, set models.ExerciseSet) {
		if set.Qualifies() {
			found = true
		}
	})
	return found
}

// canonicalWeight converts a set's weight, treating unknown units and missing
// weight as zero.
func (in evalInput) canonicalWeight(set models.ExerciseSet) float64 {
	if set.Weight <= 0 {
		return 0
	}
	w, ok := utils.ConvertWeight(set.Weight, set.Unit, in.unit)
	if !ok {
		return 0
	}
	return w
}

func countWorkouts(in evalInput) Evaluation {
	return Evaluation{Value: float64(len(in.windowed())), Meaningful: in.hasSessions()}
}

func totalSets(in evalInput) Evaluation {
	n := 0
	in.eachSet(in.windowed(), func(_ models.SessionExercise, set models.ExerciseSet) {
		if set.Qualifies() {
			n++
		}
	})
	return Evaluation{Value: float64(n), Meaningful: in.hasExerciseData()}
}

func totalDuration(in evalInput) Evaluation {
	var total time.Duration
	for _, s := range in.windowed() {
		total += s.Duration()
	}
	return Evaluation{Value: total.Minutes(), Meaningful: in.hasSessions()}
}

// activeDays returns the distinct local dates with a session, oldest first.
func activeDays(sessions []models.TrainingSession, loc *time.Location) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, s := range sessions {
		d := utils.LocalDate(s.StartTime, loc)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func longestStreak(in evalInput) Evaluation {
	days := activeDays(in.windowed(), in.loc)
	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && utils.DaysBetween(days[i-1], d) == 1 {
			run++
		} else {
			// A gap restarts the run at the day itself.
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return Evaluation{Value: float64(longest), Meaningful: in.hasSessions()}
}

// currentStreak is the run ending today or yesterday; a run that ended earlier is 0.
func currentStreak(in evalInput) Evaluation {
	days := activeDays(in.windowed(), in.loc)
	if len(days) == 0 {
		return Evaluation{Meaningful: in.hasSessions()}
	}
	today := utils.LocalDate(in.window.AsOf, in.loc)
	last := days[len(days)-1]
	if utils.DaysBetween(last, today) > 1 {
		return Evaluation{Meaningful: true}
	}
	run := 1
	for i := len(days) - 1; i > 0; i-- {
		if utils.DaysBetween(days[i-1], days[i]) != 1 {
			break
		}
		run++
	}
	return Evaluation{Value: float64(run), Meaningful: true}
}

func totalVolume(in evalInput) Evaluation {
	var volume float64
	in.eachSet(in.windowed(), func(_ models.SessionExercise, set models.ExerciseSet) {
		if set.Reps > 0 {
			volume += in.canonicalWeight(set) * float64(set.Reps)
		}
	})
	return Evaluation{Value: volume, Meaningful: in.hasExerciseData()}
}

func (in evalInput) heaviest(sessions []models.TrainingSession) float64 {
	var best float64
	in.eachSet(sessions, func(_ models.SessionExercise, set models.ExerciseSet) {
		if set.Reps > 0 {
			best = math.Max(best, in.canonicalWeight(set))
		}
	})
	return best
}

func maxWeight(in evalInput) Evaluation {
	return Evaluation{Value: in.heaviest(in.windowed()), Meaningful: in.hasExerciseData()}
}

// maxReps counts reps in the best single set at or above the secondary weight.
func maxReps(in evalInput) Evaluation {
	minWeight := 0.0
	if in.scope.Secondary != nil {
		minWeight = *in.scope.Secondary
	}
	best := 0
	in.eachSet(in.windowed(), func(_ models.SessionExercise, set models.ExerciseSet) {
		if set.Reps > best && in.canonicalWeight(set) >= minWeight {
			best = set.Reps
		}
	})
	return Evaluation{Value: float64(best), Meaningful: in.hasExerciseData()}
}

func bestOneRM(in evalInput) Evaluation {
	var best float64
	in.eachSet(in.windowed(), func(_ models.SessionExercise, set models.ExerciseSet) {
		best = math.Max(best, utils.CalculateEpley1RM(in.canonicalWeight(set), set.Reps))
	})
	return Evaluation{Value: best, Meaningful: in.hasExerciseData()}
}

// latestBodyWeight is the most recent weigh-in at or before AsOf, converted.
func (in evalInput) latestBodyWeight() (float64, bool) {
	var (
		latest time.Time
		weight float64
		found  bool
	)
	for _, bw := range in.bodyWeights {
		if bw.MeasuredAt.After(in.window.AsOf) || bw.Weight <= 0 {
			continue
		}
		w, ok := utils.ConvertWeight(bw.Weight, bw.Unit, in.unit)
		if !ok {
			continue
		}
		if !found || bw.MeasuredAt.After(latest) {
			latest, weight, found = bw.MeasuredAt, w, true
		}
	}
	return weight, found
}

func bodyWeightRelation(in evalInput) Evaluation {
	bw, ok := in.latestBodyWeight()
	meaningful := ok && in.hasExerciseData()
	if !ok || bw <= 0 {
		return Evaluation{Meaningful: meaningful}
	}
	return Evaluation{Value: in.heaviest(in.windowed()) / bw, Meaningful: meaningful}
}

func earlyBird(in evalInput) Evaluation {
	cutoff := defaultEarlyBirdHour
	if in.scope.Secondary != nil {
		cutoff = *in.scope.Secondary
	}
	n := 0
	for _, s := range in.windowed() {
		local := s.StartTime.In(in.loc)
		hours := float64(local.Hour()) + float64(local.Minute())/60
		if hours < cutoff {
			n++
		}
	}
	return Evaluation{Value: float64(n), Meaningful: in.hasSessions()}
}

// scheduleAdherence is the percentage of scheduled days followed by a session on
// that day or within the grace period. A day still inside its grace period only
// counts once it has been kept.
func scheduleAdherence(in evalInput) Evaluation {
	var schedules []models.WorkoutSchedule
	for _, s := range in.schedules {
		if s.Enabled && len(s.Days) > 0 && (in.scope.WorkoutID == "" || s.WorkoutID == in.scope.WorkoutID) {
			schedules = append(schedules, s)
		}
	}

	var sessions []models.TrainingSession
	for _, s := range in.sessions {
		if in.scope.WorkoutID == "" || s.WorkoutID == in.scope.WorkoutID {
			sessions = append(sessions, s)
		}
	}
	if len(schedules) == 0 || len(sessions) == 0 {
		return Evaluation{Meaningful: false}
	}

	today := utils.LocalDate(in.window.AsOf, in.loc)
	from := utils.LocalDate(sessions[0].StartTime, in.loc)
	if start, ok := in.window.Start(); ok {
		from = utils.LocalDate(start, in.loc)
	}

	active := make(map[time.Time]bool)
	for _, d := range activeDays(sessions, in.loc) {
		active[d] = true
	}

	scheduled := func(d time.Time) bool {
		for _, s := range schedules {
			if s.HasDay(d.Weekday()) {
				return true
			}
		}
		return false
	}

	expected, kept := 0, 0
	y, m, dd := from.Date()
	for i := 0; ; i++ {
		day := time.Date(y, m, dd+i, 0, 0, 0, 0, in.loc)
		if utils.DaysBetween(day, today) < 0 {
			break
		}
		if !scheduled(day) {
			continue
		}
		hit := false
		for g := 0; g <= adherenceGraceDays; g++ {
			check := time.Date(y, m, dd+i+g, 0, 0, 0, 0, in.loc)
			if utils.DaysBetween(check, today) < 0 {
				break
			}
			if active[check] {
				hit = true
				break
			}
		}
		decided := utils.DaysBetween(day, today) > adherenceGraceDays
		if hit {
			kept++
			expected++
		} else if decided {
			expected++
		}
	}

	if expected == 0 {
		return Evaluation{Meaningful: true}
	}
	return Evaluation{Value: 100 * float64(kept) / float64(expected), Meaningful: true}
}

func varietyBalance(in evalInput) Evaluation {
	categories := make(map[string]bool)
	in.eachSet(in.windowed(), func(se models.SessionExercise, set models.ExerciseSet) {
		c := strings.ToLower(strings.TrimSpace(se.Exercise.Category))
		if c != "" && set.Qualifies() {
			categories[c] = true
		}
	})
	return Evaluation{Value: float64(len(categories)), Meaningful: in.hasSessions()}
}

func heatmapDays(in evalInput) Evaluation {
	return Evaluation{Value: float64(len(activeDays(in.windowed(), in.loc))), Meaningful: in.hasSessions()}
}
