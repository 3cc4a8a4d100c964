package cmd

import (
	"fmt"
	"strings"

	"github.com/misterclayt0n/podium/internal/utils"
	"github.com/spf13/cobra"
)

var swapExerciseCmd = &cobra.Command{
	Use:   "swap-ex [exercise-index-or-name] [new-exercise-name]",
	Short: "Log the sets of an exercise in the current session under another exercise",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("No active session currently")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("Failed to load session: %w", err)
		}

		exerciseIndex, ok := findSessionExercise(state, args[0])
		if !ok {
			return fmt.Errorf("Exercise %s is not part of the current session", args[0])
		}

		newExerciseName := strings.TrimSpace(args[1])
		if newExerciseName == "" {
			return fmt.Errorf("New exercise name is empty")
		}
		if other, found := findSessionExercise(state, newExerciseName); found && other != exerciseIndex {
			return fmt.Errorf("%s is already in the current session", newExerciseName)
		}

		// The new name is resolved against stored exercises when the session is saved.
		sessionExercise := &state.Exercises[exerciseIndex]
		sessionExercise.Exercise.ID = ""
		sessionExercise.Exercise.Name = newExerciseName
		sessionExercise.Exercise.Category = ""

		if err := utils.SaveSessionState(state); err != nil {
			return fmt.Errorf("Failed to save session: %w", err)
		}

		fmt.Printf("✅ Swapped exercise to %s\n", newExerciseName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(swapExerciseCmd)
}
