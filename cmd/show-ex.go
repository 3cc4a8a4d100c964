package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/spf13/cobra"
)

var (
	limitSessions int
	historyOnly   bool
)

var showExCmd = &cobra.Command{
	Use:   "show-ex [exercise-name]",
	Short: "Display records and training history for a particular exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ex, err := a.st.GetExerciseByName(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get exercise: %w", err)
		}

		now := time.Now().UTC()
		history, err := a.st.LoadHistory(cmd.Context(), now)
		if err != nil {
			return err
		}

		boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
		boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		magenta := color.New(color.FgMagenta).SprintFunc()
		blue := color.New(color.FgBlue).SprintFunc()

		if !historyOnly {
			fmt.Println(boldGreen("Exercise Information:"))
			fmt.Printf("  %s: %s\n", boldCyan("Name"), ex.Name)
			if ex.Category != "" {
				fmt.Printf("  %s: %s\n", boldCyan("Category"), ex.Category)
			}
			fmt.Printf("  %s: %s\n", boldCyan("Created At"), ex.CreatedAt.In(a.loc).Format(time.RFC1123))

			window := achievement.Window{AsOf: now}
			scope := achievement.Scope{ExerciseName: ex.Name}
			for _, m := range []models.MetricType{
				models.MetricMaxWeight,
				models.MetricOneRMTarget,
				models.MetricMaxReps,
				models.MetricTotalVolume,
				models.MetricTotalSets,
			} {
				ev, err := achievement.Evaluate(m, history, window, scope, a.evalOptions())
				if err != nil {
					return err
				}
				fmt.Printf("  %s: %.1f %s\n", boldCyan(metricLabel(m)), ev.Value, achievement.MetricUnit(m, a.cfg.Engine.CanonicalUnit))
			}
			fmt.Println()
		}

		fmt.Printf("%s %s:\n", boldGreen("History for"), ex.Name)
		shown := 0
		for i := len(history.Sessions) - 1; i >= 0 && shown < limitSessions; i-- {
			ts := history.Sessions[i]
			for _, se := range ts.Exercises {
				if !strings.EqualFold(se.Exercise.Name, ex.Name) {
					continue
				}
				shown++
				fmt.Printf("\n%s %d. %s\n", boldGreen("Session"), shown, ts.ID)
				fmt.Printf("   %s: %s\n", blue("Start Time"), ts.StartTime.In(a.loc).Format(time.RFC1123))
				if se.Notes != "" {
					fmt.Printf("   %s: %s\n", magenta("Notes"), se.Notes)
				}
				printSetTable(se.Sets)
			}
		}
		if shown == 0 {
			fmt.Println(magenta("  No training sessions found."))
		}
		return nil
	},
}

func metricLabel(m models.MetricType) string {
	return strings.ReplaceAll(strings.ToLower(string(m)), "_", " ")
}

func init() {
	rootCmd.AddCommand(showExCmd)
	showExCmd.Flags().IntVarP(&limitSessions, "limit", "l", 5, "Number of sessions to display")
	showExCmd.Flags().BoolVarP(&historyOnly, "history-only", "H", false, "Display only history without records")
}
