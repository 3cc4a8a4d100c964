package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show training totals, streaks, schedule adherence and sets per category (last 7 days)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		now := time.Now().UTC()
		history, err := a.st.LoadHistory(cmd.Context(), now)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		week := 7
		all := achievement.Window{AsOf: now}
		lastWeek := achievement.Window{AsOf: now, Days: &week}
		opts := a.evalOptions()
		unit := a.cfg.Engine.CanonicalUnit

		value := func(m models.MetricType, w achievement.Window) (float64, error) {
			ev, err := achievement.Evaluate(m, history, w, achievement.Scope{}, opts)
			return ev.Value, err
		}

		printBoxedHeader("STATUS")
		rows := []struct {
			label  string
			metric models.MetricType
			window achievement.Window
			format func(float64) string
		}{
			{"Total sessions", models.MetricTotalWorkouts, all, func(v float64) string { return fmt.Sprintf("%.0f", v) }},
			{"Sessions this week", models.MetricWorkoutsPerWeek, lastWeek, func(v float64) string { return fmt.Sprintf("%.0f", v) }},
			{"Total volume", models.MetricTotalVolume, all, func(v float64) string { return fmt.Sprintf("%.1f %s", v, unit) }},
			{"Total time training", models.MetricTotalDuration, all, func(v float64) string {
				return (time.Duration(v) * time.Minute).Round(time.Minute).String()
			}},
			{"Current streak", models.MetricCurrentStreak, all, func(v float64) string { return fmt.Sprintf("%.0f days", v) }},
			{"Longest streak", models.MetricStreakActiveDays, all, func(v float64) string { return fmt.Sprintf("%.0f days", v) }},
			{"Active days", models.MetricHeatmapDays, all, func(v float64) string { return fmt.Sprintf("%.0f", v) }},
		}
		for _, r := range rows {
			v, err := value(r.metric, r.window)
			if err != nil {
				return err
			}
			printMetric(r.label, r.format(v))
		}
		if len(history.Schedules) > 0 {
			month := 28
			v, err := value(models.MetricScheduleAdherence, achievement.Window{AsOf: now, Days: &month})
			if err != nil {
				return err
			}
			printMetric("Schedule adherence (4 weeks)", fmt.Sprintf("%.0f%%", v))
		}
		fmt.Println()

		// Sets per category over the same 7 day window the weekly metrics use.
		setsPerCategory := make(map[string]int)
		for _, s := range history.Sessions {
			if !lastWeek.Contains(s.StartTime) {
				continue
			}
			for _, se := range s.Exercises {
				category := se.Exercise.Category
				if category == "" {
					category = "uncategorized"
				}
				for _, set := range se.Sets {
					if set.Qualifies() {
						setsPerCategory[category]++
					}
				}
			}
		}

		header := color.New(color.FgGreen, color.Bold).Sprintf("Sets per category (last 7 days):")
		fmt.Println(header)
		var categories []string
		for c := range setsPerCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			fmt.Printf("  • %s: %d sets\n", color.New(color.FgMagenta, color.Bold).Sprint(c), setsPerCategory[c])
		}
		fmt.Println()

		return nil
	},
}

// printBoxedHeader prints the title in a Unicode box with a fixed width.
func printBoxedHeader(title string) {
	width := 40
	cyanBold := color.New(color.FgCyan, color.Bold).SprintFunc()
	border := strings.Repeat("═", width)
	fmt.Println(cyanBold("╔" + border + "╗"))
	fmt.Println(cyanBold("║" + padCenter(title, width) + "║"))
	fmt.Println(cyanBold("╚" + border + "╝"))
}

func padCenter(s string, width int) string {
	if len(s) >= width {
		return s
	}
	padding := (width - len(s)) / 2
	return strings.Repeat(" ", padding) + s + strings.Repeat(" ", width-len(s)-padding)
}

// printMetric prints a label and value using bold yellow for the label.
func printMetric(label string, value interface{}) {
	yellowBold := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Printf("  %s: %v\n", yellowBold(label), value)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
