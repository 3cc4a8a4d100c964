package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/utils"
	"github.com/spf13/cobra"
)

var (
	goalKind      string
	goalExercise  string
	goalTarget    float64
	goalSecondary float64
	goalWindow    int
	goalDeadline  string
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage personal goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a goal (one_rm, max_weight, reps, volume, frequency, streak, bodyweight_ratio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseUserGoalKind(goalKind)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		g := models.UserGoal{
			Kind:         kind,
			ExerciseName: goalExercise,
			TargetValue:  goalTarget,
			CreatedAt:    time.Now().UTC().Truncate(time.Second),
		}
		if cmd.Flags().Changed("secondary") {
			g.SecondaryValue = &goalSecondary
		}
		if cmd.Flags().Changed("window") {
			g.WindowDays = &goalWindow
		}
		if goalDeadline != "" {
			day, err := time.ParseInLocation("2006-01-02", goalDeadline, a.loc)
			if err != nil {
				return fmt.Errorf("Invalid deadline, use YYYY-MM-DD: %w", err)
			}
			// Due at the end of that day.
			deadline := day.AddDate(0, 0, 1).Add(-time.Second).UTC()
			g.DeadlineAt = &deadline
		}

		saved, err := a.st.CreateGoal(cmd.Context(), g)
		if err != nil {
			return fmt.Errorf("Failed to create goal: %w", err)
		}
		fmt.Printf("✅ Goal %s added: %s\n", saved.ID, achievement.GoalTitle(*saved))
		return a.recomputeAndReport(cmd.Context())
	},
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals with their progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		goals, err := a.st.ListGoals(cmd.Context())
		if err != nil {
			return err
		}
		if len(goals) == 0 {
			fmt.Println("No goals yet. Add one with `podium goal add`.")
			return nil
		}
		instances, err := a.st.ListInstances(cmd.Context())
		if err != nil {
			return err
		}
		byDefinition := make(map[string]models.AchievementInstance)
		for _, inst := range instances {
			byDefinition[inst.DefinitionID] = inst
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		for _, g := range goals {
			fmt.Printf("%s %s\n", bold(achievement.GoalTitle(g)), faint(g.ID))
			inst, ok := byDefinition[achievement.GoalDefinitionID(g.ID)]
			if !ok {
				fmt.Println("   not evaluated yet; run `podium recompute`")
				continue
			}
			fmt.Printf("   %s %s\n", statusLabel(inst.Status), utils.ProgressBar(inst.Progress.Percent, 20))
			fmt.Printf("   %.1f / %g %s\n", inst.Progress.Current, inst.Progress.Target, inst.Progress.Unit)
			if g.DeadlineAt != nil {
				fmt.Printf("   due %s\n", g.DeadlineAt.In(a.loc).Format("Mon, 02 Jan 2006"))
			}
		}
		return nil
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete [goal-id]",
	Short: "Delete a goal and its progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.st.DeleteGoal(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("Failed to delete goal: %w", err)
		}
		fmt.Println("✅ Goal deleted")
		return nil
	},
}

func init() {
	goalAddCmd.Flags().StringVarP(&goalKind, "kind", "k", "", "Goal kind")
	goalAddCmd.Flags().StringVarP(&goalExercise, "exercise", "e", "", "Exercise the goal measures")
	goalAddCmd.Flags().Float64VarP(&goalTarget, "target", "t", 0, "Target value")
	goalAddCmd.Flags().Float64Var(&goalSecondary, "secondary", 0, "Secondary target (minimum weight for reps goals)")
	goalAddCmd.Flags().IntVar(&goalWindow, "window", 0, "Only count the last N days")
	goalAddCmd.Flags().StringVar(&goalDeadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	goalAddCmd.MarkFlagRequired("kind")
	goalAddCmd.MarkFlagRequired("target")

	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalDeleteCmd)
	rootCmd.AddCommand(goalCmd)
}
