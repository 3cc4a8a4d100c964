package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/config"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/storage"
	"github.com/misterclayt0n/podium/internal/tracker"
)

// app bundles what most commands need: the loaded config, an open store and a
// tracker wired with the configured engine.
type app struct {
	cfg     *config.Config
	st      *storage.Storage
	engine  *achievement.Engine
	tracker *tracker.Tracker
	loc     *time.Location
	logger  *log.Logger
}

func openApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	st, err := storage.Open(cfg.DB.ConnectionString)
	if err != nil {
		return nil, err
	}

	var out io.Writer = io.Discard
	if verbose {
		out = os.Stderr
	}
	logger := log.New(out, "podium: ", log.LstdFlags)
	loc := cfg.Location()

	engine := achievement.NewEngine(
		achievement.WithLocation(loc),
		achievement.WithCanonicalUnit(cfg.Engine.CanonicalUnit),
		achievement.WithDeadlineThreshold(cfg.DeadlineThreshold()),
		achievement.WithLogger(logger),
	)
	tr := tracker.New(st, engine,
		tracker.WithLocation(loc),
		tracker.WithRetry(cfg.Engine.RetryAttempts, cfg.Engine.RetryDelay.Duration),
		tracker.WithLogger(logger),
	)

	return &app{cfg: cfg, st: st, engine: engine, tracker: tr, loc: loc, logger: logger}, nil
}

func (a *app) Close() error {
	return a.st.Close()
}

// evalOptions are the options the engine was built with, for commands that
// evaluate metrics directly.
func (a *app) evalOptions() achievement.EvalOptions {
	return achievement.EvalOptions{Location: a.loc, CanonicalUnit: a.cfg.Engine.CanonicalUnit}
}

// printEvents prints the events a pass delivered. Time left on a deadline is
// measured from asOf, the instant the pass evaluated.
func printEvents(w io.Writer, events []models.AchievementEvent, asOf time.Time, loc *time.Location) {
	gold := color.New(color.FgYellow, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, ev := range events {
		switch e := ev.(type) {
		case models.CompletedEvent:
			fmt.Fprintf(w, "🏆 %s %s\n", gold("Achievement unlocked:"), e.Title)
		case models.DeadlineApproachingEvent:
			left := e.DeadlineAt.Sub(asOf).Round(time.Hour)
			fmt.Fprintf(w, "⏰ %s %s is due %s (%s left)\n", red("Deadline:"), e.Title, e.DeadlineAt.In(loc).Format("Mon, 02 Jan 15:04"), left)
		}
	}
}

// recomputeAndReport runs a pass and prints what it delivered.
func (a *app) recomputeAndReport(ctx context.Context) error {
	out, err := a.tracker.Recompute(ctx)
	if err != nil {
		return fmt.Errorf("Failed to recompute achievements: %w", err)
	}
	printEvents(os.Stdout, out.Delivered, out.AsOf, a.loc)
	return nil
}

func formatWeight(weight float64, unit string) string {
	if unit == "" {
		unit = models.UnitKilograms
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", weight), "0"), ".") + unit
}
