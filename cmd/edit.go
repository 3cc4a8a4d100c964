package cmd

import (
	"fmt"
	"strconv"

	"github.com/misterclayt0n/podium/internal/utils"
	"github.com/spf13/cobra"
)

var (
	setWeight float64
	setReps   int
	setUnit   string
)

var editSetCmd = &cobra.Command{
	Use:   "edit-set [exercise-index-or-name] [set-index]",
	Short: "Edit a set in the current session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("No active session")
		}

		setIndex, err := strconv.Atoi(args[1])
		setIndex--
		if err != nil || setIndex < 0 {
			return fmt.Errorf("Invalid set index")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("Failed to load session: %w", err)
		}

		exerciseIndex, ok := findSessionExercise(state, args[0])
		if !ok {
			return fmt.Errorf("Exercise %s is not part of the current session", args[0])
		}

		exercise := &state.Exercises[exerciseIndex]
		if setIndex >= len(exercise.Sets) {
			return fmt.Errorf("Set index out of range")
		}

		// Only the given flags change; id and timestamp stay so the set keeps its place.
		set := &exercise.Sets[setIndex]
		if cmd.Flags().Changed("weight") {
			set.Weight = setWeight
		}
		if cmd.Flags().Changed("reps") {
			set.Reps = setReps
		}
		if cmd.Flags().Changed("unit") {
			unit, err := utils.ValidateUnit(setUnit)
			if err != nil {
				return err
			}
			set.Unit = unit
		}

		if err := utils.SaveSessionState(state); err != nil {
			return fmt.Errorf("Failed to save session: %w", err)
		}

		fmt.Printf("✅ Set updated: %s × %d\n", formatWeight(set.Weight, set.Unit), set.Reps)
		return nil
	},
}

func init() {
	editSetCmd.Flags().Float64VarP(&setWeight, "weight", "w", 0, "Weight used")
	editSetCmd.Flags().IntVarP(&setReps, "reps", "r", 0, "Reps performed")
	editSetCmd.Flags().StringVarP(&setUnit, "unit", "u", "kg", "Weight unit (kg or lb)")
	editSetCmd.MarkFlagsOneRequired("weight", "reps", "unit")

	rootCmd.AddCommand(editSetCmd)
}
