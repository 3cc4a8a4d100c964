package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/utils"
	"github.com/spf13/cobra"
)

var showAllAchievements bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievement progress (locked ones only with --all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		defs, err := a.st.ListDefinitions(cmd.Context())
		if err != nil {
			return err
		}
		instances, err := a.st.ListInstances(cmd.Context())
		if err != nil {
			return err
		}

		byDefinition := make(map[string][]models.AchievementInstance)
		for _, inst := range instances {
			byDefinition[inst.DefinitionID] = append(byDefinition[inst.DefinitionID], inst)
		}

		printBoxedHeader("ACHIEVEMENTS")
		faint := color.New(color.Faint).SprintFunc()
		completed := 0
		for _, def := range defs {
			list := byDefinition[def.ID]
			sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })

			times := 0
			var current *models.AchievementInstance
			for i := range list {
				if list[i].Status.IsTerminal() {
					times++
				} else {
					current = &list[i]
				}
			}
			if times > 0 {
				completed++
			}
			if current == nil && len(list) > 0 {
				current = &list[len(list)-1]
			}
			if current == nil || (current.Status == models.StatusLocked && times == 0 && !showAllAchievements) {
				continue
			}

			title := tierColor(string(def.Tier))(def.Title)
			if times > 1 {
				title += fmt.Sprintf(" ×%d", times)
			}
			fmt.Printf("%s %s\n", title, faint(def.Description))
			fmt.Printf("   %s %s  %.1f/%g %s\n", statusLabel(current.Status), utils.ProgressBar(current.Progress.Percent, 20),
				current.Progress.Current, current.Progress.Target, current.Progress.Unit)
			if current.CompletedAt != nil {
				fmt.Printf("   %s\n", faint("completed "+current.CompletedAt.In(a.loc).Format("02 Jan 2006")))
			}
			if current.UserNotes != "" {
				fmt.Printf("   📝 %s\n", current.UserNotes)
			}
			fmt.Printf("   %s\n", faint(current.ID))
		}
		fmt.Printf("\n%d of %d achievements earned\n", completed, len(defs))
		return nil
	},
}

var achievementNoteCmd = &cobra.Command{
	Use:   "note [instance-id] [text]",
	Short: "Attach a note to an achievement",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.st.SetInstanceNotes(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("Failed to save note: %w", err)
		}
		fmt.Println("✅ Note saved")
		return nil
	},
}

func statusLabel(s models.AchievementStatus) string {
	switch s {
	case models.StatusCompleted:
		return color.New(color.FgGreen, color.Bold).Sprint("✔ done")
	case models.StatusInProgress:
		return color.New(color.FgYellow).Sprint("… open")
	}
	return color.New(color.Faint).Sprint("🔒 lock")
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Re-evaluate every achievement and goal against the full history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.tracker.Recompute(cmd.Context())
		if err != nil {
			return err
		}
		printEvents(os.Stdout, out.Delivered, out.AsOf, a.loc)

		counts := make(map[models.AchievementStatus]int)
		for _, inst := range out.Instances {
			if achievement.IsGoalDefinition(inst.DefinitionID) {
				continue
			}
			counts[inst.Status]++
		}
		fmt.Printf("✅ Recomputed as of %s: %d completed, %d in progress, %d locked, %d new\n",
			out.AsOf.In(a.loc).Format("02 Jan 15:04"),
			counts[models.StatusCompleted], counts[models.StatusInProgress], counts[models.StatusLocked], out.Spawned)
		return nil
	},
}

func init() {
	achievementsCmd.Flags().BoolVarP(&showAllAchievements, "all", "a", false, "Include locked achievements")
	achievementsCmd.AddCommand(achievementNoteCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(recomputeCmd)
}
