package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/misterclayt0n/podium/internal/models"
	"github.com/spf13/cobra"
)

var (
	filterWorkout string
	filterDay     string
	historyLimit  int
)

// historyCmd shows session history grouped by workout and day.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Display session history, optionally filtered by workout and/or day",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.st.ListSessions(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to retrieve sessions: %w", err)
		}

		// Case insensitive filtering by workout.
		if filterWorkout != "" {
			var filtered []models.TrainingSession
			for _, s := range sessions {
				if strings.EqualFold(s.WorkoutID, filterWorkout) {
					filtered = append(filtered, s)
				}
			}
			sessions = filtered
		}

		if filterDay != "" {
			parsedDay, err := time.ParseInLocation("2006-01-02", filterDay, a.loc)
			if err != nil {
				parsedDay, err = time.ParseInLocation("02/01/06", filterDay, a.loc)
			}
			if err != nil {
				return fmt.Errorf("failed to parse day: %w", err)
			}

			var filtered []models.TrainingSession
			for _, s := range sessions {
				if s.StartTime.In(a.loc).Format("2006-01-02") == parsedDay.Format("2006-01-02") {
					filtered = append(filtered, s)
				}
			}
			sessions = filtered
		}

		grouped := make(map[string]map[string][]models.TrainingSession)
		for _, s := range sessions {
			workout := s.WorkoutID
			if workout == "" {
				workout = "Free sessions"
			}
			if _, ok := grouped[workout]; !ok {
				grouped[workout] = make(map[string][]models.TrainingSession)
			}
			day := s.StartTime.In(a.loc).Format("2006-01-02")
			grouped[workout][day] = append(grouped[workout][day], s)
		}

		var workouts []string
		for w := range grouped {
			workouts = append(workouts, w)
		}
		sort.Strings(workouts)
		for _, w := range workouts {
			fmt.Printf("Workout: %s\n", w)
			var days []string
			for d := range grouped[w] {
				days = append(days, d)
			}
			sort.Strings(days)
			for _, d := range days {
				fmt.Printf("  Date: %s\n", d)
				sList := grouped[w][d]
				sort.Slice(sList, func(i, j int) bool {
					return sList[i].StartTime.Before(sList[j].StartTime)
				})
				for _, s := range sList {
					sets := 0
					for _, se := range s.Exercises {
						sets += len(se.Sets)
					}
					fmt.Printf("    Session %s | Start: %s | Duration: %s | %d exercises, %d sets\n",
						s.ID,
						s.StartTime.In(a.loc).Format("15:04"),
						s.Duration().Round(time.Second),
						len(s.Exercises),
						sets,
					)
				}
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&filterWorkout, "workout", "w", "", "Filter by workout id (case insensitive)")
	historyCmd.Flags().StringVarP(&filterDay, "day", "d", "", "Filter by day (e.g. 2025-02-07 or 07/02/25)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 0, "Only consider the N most recent sessions (0 for all)")
}
