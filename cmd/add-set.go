package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/utils"
	"github.com/spf13/cobra"
)

var (
	newSetWeight   float64
	newSetReps     int
	newSetUnit     string
	newSetRPE      float64
	newSetDuration time.Duration
	newSetDistance float64
	newSetCategory string
)

// findSessionExercise resolves ref as a 1-based index or an exercise name.
func findSessionExercise(state *models.SessionState, ref string) (int, bool) {
	if idx, err := strconv.Atoi(ref); err == nil {
		if idx < 1 || idx > len(state.Exercises) {
			return -1, false
		}
		return idx - 1, true
	}
	for i, se := range state.Exercises {
		if strings.EqualFold(se.Exercise.Name, strings.TrimSpace(ref)) {
			return i, true
		}
	}
	return -1, false
}

var addSetCmd = &cobra.Command{
	Use:   "add-set [exercise-index-or-name]",
	Short: "Add a set to the current session; unknown names start a new exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("No active session")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("Failed to load session state: %w", err)
		}

		unit, err := utils.ValidateUnit(newSetUnit)
		if err != nil {
			return err
		}

		exIdx, ok := findSessionExercise(state, args[0])
		if !ok {
			if _, err := strconv.Atoi(args[0]); err == nil {
				return fmt.Errorf("Exercise index out of range")
			}
			state.Exercises = append(state.Exercises, models.SessionExercise{
				ID:       uuid.New().String(),
				Exercise: models.Exercise{Name: strings.TrimSpace(args[0]), Category: newSetCategory},
			})
			exIdx = len(state.Exercises) - 1
		}

		newSet := models.ExerciseSet{
			ID:        uuid.New().String(),
			Weight:    newSetWeight,
			Reps:      newSetReps,
			Unit:      unit,
			Timestamp: time.Now().UTC(),
		}
		if cmd.Flags().Changed("rpe") {
			newSet.RPE = &newSetRPE
		}
		if newSetDuration > 0 {
			secs := int(newSetDuration.Seconds())
			newSet.DurationSeconds = &secs
		}
		if newSetDistance > 0 {
			newSet.DistanceMeters = &newSetDistance
		}
		if !newSet.Qualifies() {
			return fmt.Errorf("A set needs reps, a duration or a distance")
		}

		state.Exercises[exIdx].Sets = append(state.Exercises[exIdx].Sets, newSet)

		if err := utils.SaveSessionState(state); err != nil {
			return fmt.Errorf("Failed to save session state: %w", err)
		}

		fmt.Printf("✅ Added set %d to '%s'\n", len(state.Exercises[exIdx].Sets), state.Exercises[exIdx].Exercise.Name)
		return nil
	},
}

func init() {
	addSetCmd.Flags().Float64VarP(&newSetWeight, "weight", "w", 0, "Weight used for the set")
	addSetCmd.Flags().IntVarP(&newSetReps, "reps", "r", 0, "Number of reps performed")
	addSetCmd.Flags().StringVarP(&newSetUnit, "unit", "u", "kg", "Weight unit (kg or lb)")
	addSetCmd.Flags().Float64Var(&newSetRPE, "rpe", 0, "Rate of perceived exertion")
	addSetCmd.Flags().DurationVarP(&newSetDuration, "duration", "d", 0, "Duration of a timed set (e.g. 90s)")
	addSetCmd.Flags().Float64Var(&newSetDistance, "distance", 0, "Distance covered, in meters")
	addSetCmd.Flags().StringVarP(&newSetCategory, "category", "c", "", "Category of a new exercise (e.g. chest, cardio)")
	rootCmd.AddCommand(addSetCmd)
}
