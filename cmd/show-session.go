package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/utils"
	"github.com/spf13/cobra"
)

var showSessionCmd = &cobra.Command{
	Use:   "show-session",
	Short: "Show current session status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("No active session")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("Failed to load session: %w", err)
		}

		duration := time.Since(state.StartTime).Round(time.Second)

		cyan := color.New(color.FgCyan).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()

		title := "Free session"
		if state.WorkoutID != "" {
			title = state.WorkoutID
		}
		fmt.Printf("%s\n", green(title))
		fmt.Printf("%s %s\n", red("Session:"), state.SessionID)
		fmt.Printf("%s %s\n", red("Duration:"), duration)
		if state.Notes != "" {
			fmt.Printf("%s %s\n", cyan("Notes:"), state.Notes)
		}
		fmt.Println()

		if len(state.Exercises) == 0 {
			fmt.Println("No sets logged yet. Use `podium add-set <exercise>`.")
			return nil
		}

		for exIdx, exercise := range state.Exercises {
			fmt.Printf("%s %s\n", cyan(fmt.Sprintf("%d.", exIdx+1)), yellow(exercise.Exercise.Name))
			if exercise.Notes != "" {
				fmt.Printf("   %s %s\n", cyan("Notes:"), exercise.Notes)
			}
			printSetTable(exercise.Sets)
			fmt.Println()
		}
		return nil
	},
}

// printSetTable prints sets the same way for live and saved sessions.
func printSetTable(sets []models.ExerciseSet) {
	if len(sets) == 0 {
		fmt.Println("   " + color.New(color.FgMagenta).Sprint("No set data available."))
		return
	}
	fmt.Printf("      %-4s | %-10s | %-5s | %s\n", "Set", "Weight", "Reps", "Other")
	fmt.Println("      " + strings.Repeat("─", 40))
	for k, set := range sets {
		var extra []string
		if set.RPE != nil {
			extra = append(extra, fmt.Sprintf("RPE %.1f", *set.RPE))
		}
		if set.DurationSeconds != nil {
			extra = append(extra, (time.Duration(*set.DurationSeconds) * time.Second).String())
		}
		if set.DistanceMeters != nil {
			extra = append(extra, fmt.Sprintf("%.0fm", *set.DistanceMeters))
		}
		fmt.Printf("      %-4d | %-10s | %-5d | %s\n", k+1, formatWeight(set.Weight, set.Unit), set.Reps, strings.Join(extra, ", "))
	}
}

func init() {
	rootCmd.AddCommand(showSessionCmd)
}
