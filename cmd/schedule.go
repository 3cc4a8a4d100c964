package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	scheduleDays string
	scheduleAt   string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage weekly workout reminders",
}

var scheduleSetCmd = &cobra.Command{
	Use:   "set [workout-id]",
	Short: "Schedule a workout on weekdays at a time, e.g. --days mon,wed,fri --at 07:30",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := models.ParseWeekdays(scheduleDays)
		if err != nil {
			return err
		}
		at, err := time.Parse("15:04", scheduleAt)
		if err != nil {
			return fmt.Errorf("Invalid time %q, use HH:MM", scheduleAt)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sched := models.WorkoutSchedule{
			WorkoutID:    args[0],
			Days:         days,
			NotifyHour:   at.Hour(),
			NotifyMinute: at.Minute(),
			Enabled:      true,
		}
		if err := a.st.UpsertSchedule(cmd.Context(), sched); err != nil {
			return err
		}

		// The stored next run belongs to the old days, so it is armed again right away.
		next, ok := schedule.Next(sched, time.Now(), a.loc)
		var nextPtr *time.Time
		if ok {
			next = next.UTC()
			nextPtr = &next
		}
		if err := a.st.SetNextRun(cmd.Context(), sched.WorkoutID, nextPtr); err != nil {
			return err
		}

		fmt.Printf("✅ %s scheduled on %s at %s\n", sched.WorkoutID, models.FormatWeekdays(days), scheduleAt)
		if ok {
			fmt.Printf("   next reminder %s\n", next.In(a.loc).Format("Mon, 02 Jan 15:04"))
		}
		return nil
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedules and their upcoming reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		schedules, err := a.st.ListSchedules(cmd.Context())
		if err != nil {
			return err
		}
		if len(schedules) == 0 {
			fmt.Println("No schedules. Add one with `podium schedule set`.")
			return nil
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		horizon := time.Duration(a.cfg.Reminders.LookaheadDays) * 24 * time.Hour
		now := time.Now()
		for _, s := range schedules {
			state := color.GreenString("enabled")
			if !s.Enabled {
				state = faint("disabled")
			}
			fmt.Printf("%s %s at %02d:%02d (%s)\n", bold(s.WorkoutID), models.FormatWeekdays(s.Days), s.NotifyHour, s.NotifyMinute, state)
			if s.NextRunAt != nil {
				fmt.Printf("   armed for %s\n", s.NextRunAt.In(a.loc).Format("Mon, 02 Jan 15:04"))
			}
			for _, run := range schedule.Upcoming(s, now, horizon, a.loc) {
				fmt.Printf("   %s\n", faint(run.In(a.loc).Format("Mon, 02 Jan 15:04")))
			}
		}
		return nil
	},
}

var scheduleDisableCmd = &cobra.Command{
	Use:   "disable [workout-id]",
	Short: "Turn a workout reminder off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.st.DisableSchedule(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✅ %s reminder disabled\n", args[0])
		return nil
	},
}

var scheduleArmCmd = &cobra.Command{
	Use:   "arm",
	Short: "Store the next reminder of every schedule; run it after a reminder fires",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		armed, err := a.tracker.ArmSchedules(cmd.Context())
		if err != nil {
			return err
		}
		for _, s := range armed {
			if s.Next == nil {
				fmt.Printf("  %s: off\n", s.WorkoutID)
				continue
			}
			fmt.Printf("  %s: %s\n", s.WorkoutID, s.Next.In(a.loc).Format("Mon, 02 Jan 15:04"))
		}
		return nil
	},
}

func init() {
	scheduleSetCmd.Flags().StringVarP(&scheduleDays, "days", "d", "", "Weekdays, comma separated (mon,wed,fri)")
	scheduleSetCmd.Flags().StringVar(&scheduleAt, "at", "07:00", "Reminder time (HH:MM, local)")
	scheduleSetCmd.MarkFlagRequired("days")

	scheduleCmd.AddCommand(scheduleSetCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleDisableCmd)
	scheduleCmd.AddCommand(scheduleArmCmd)
	rootCmd.AddCommand(scheduleCmd)
}
