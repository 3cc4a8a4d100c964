package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/spf13/cobra"
)

// details is a flag to enable verbose session details.
var details bool

// calendarCmd prints a month heatmap. Training days are shaded by how many
// sessions they hold and days with a scheduled workout carry a marker.
var calendarCmd = &cobra.Command{
	Use:   "calendar [month] [year]",
	Short: "Display a heatmap of training days with scheduled days marked",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Determine month and year (default to current month/year).
		now := time.Now().In(a.loc)
		month := now.Month()
		year := now.Year()
		if len(args) >= 1 {
			m, err := strconv.Atoi(args[0])
			if err != nil || m < 1 || m > 12 {
				return fmt.Errorf("invalid month: %s", args[0])
			}
			month = time.Month(m)
		}
		if len(args) == 2 {
			y, err := strconv.Atoi(args[1])
			if err != nil || y < 1 {
				return fmt.Errorf("invalid year: %s", args[1])
			}
			year = y
		}

		firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, a.loc)
		lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

		history, err := a.st.LoadHistory(cmd.Context(), firstOfMonth.AddDate(0, 1, 0))
		if err != nil {
			return fmt.Errorf("failed to get sessions: %w", err)
		}

		sessionsByDay := make(map[int][]models.TrainingSession)
		for _, s := range history.Sessions {
			local := s.StartTime.In(a.loc)
			if local.Year() != year || local.Month() != month {
				continue
			}
			sessionsByDay[local.Day()] = append(sessionsByDay[local.Day()], s)
		}

		scheduled := make(map[time.Weekday]bool)
		for _, sched := range history.Schedules {
			if !sched.Enabled {
				continue
			}
			for _, d := range sched.Days {
				scheduled[d] = true
			}
		}

		light := color.New(color.FgGreen).SprintFunc()
		heavy := color.New(color.FgHiGreen, color.Bold).SprintFunc()
		missed := color.New(color.FgRed).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		today := now.Format("2006-01-02")

		header := fmt.Sprintf("%s %d", month.String(), year)
		fmt.Println(centerText(header, 21))
		fmt.Println("Su Mo Tu We Th Fr Sa")

		weekday := int(firstOfMonth.Weekday())
		for i := 0; i < weekday; i++ {
			fmt.Print("   ")
		}

		for day := 1; day <= lastOfMonth.Day(); day++ {
			date := time.Date(year, month, day, 0, 0, 0, 0, a.loc)
			dayStr := fmt.Sprintf("%2d", day)
			isPast := date.Format("2006-01-02") <= today
			switch n := len(sessionsByDay[day]); {
			case n >= 2:
				dayStr = heavy(dayStr)
			case n == 1:
				dayStr = light(dayStr)
			case scheduled[date.Weekday()] && isPast:
				dayStr = missed(dayStr)
			case scheduled[date.Weekday()]:
				dayStr = faint(dayStr)
			}
			fmt.Printf("%s ", dayStr)
			weekday++
			if weekday%7 == 0 {
				fmt.Println()
			}
		}
		fmt.Print("\n\n")

		fmt.Println("Legend:")
		fmt.Printf("  %s: one session  %s: two or more\n", light("██"), heavy("██"))
		if len(scheduled) > 0 {
			fmt.Printf("  %s: scheduled, missed  %s: scheduled, upcoming\n", missed("██"), faint("██"))
		}

		if details {
			fmt.Println("\nSession Details:")
			var days []int
			for d := range sessionsByDay {
				days = append(days, d)
			}
			sort.Ints(days)
			for _, day := range days {
				dayDate := time.Date(year, month, day, 0, 0, 0, 0, a.loc)
				fmt.Printf("\n%s:\n", dayDate.Format("Mon, 02 Jan 2006"))
				for _, sess := range sessionsByDay[day] {
					label := sess.WorkoutID
					if label == "" {
						label = "free"
					}
					fmt.Printf("  Session %s (%s) at %s", sess.ID, label, sess.StartTime.In(a.loc).Format("15:04"))
					if sess.EndTime != nil {
						fmt.Printf(" - %s", sess.EndTime.In(a.loc).Format("15:04"))
					}
					fmt.Println()
				}
			}
		}

		return nil
	},
}

// centerText centers the given string in a field of the specified width.
func centerText(s string, width int) string {
	if len(s) >= width {
		return s
	}
	padding := (width - len(s)) / 2
	return strings.Repeat(" ", padding) + s
}

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.Flags().BoolVarP(&details, "details", "d", false, "Print additional session details")
}
