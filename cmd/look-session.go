package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/spf13/cobra"
)

var dateStr string

var lookSessionCmd = &cobra.Command{
	Use:   "look-session [session-id]",
	Short: "Display detailed information for a saved session by its ID, or by date using --date",
	// Allow 0 or 1 argument.
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		magenta := color.New(color.FgMagenta).SprintFunc()
		boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		if dateStr != "" {
			// Assume the user passes the date as "DD/MM/YY".
			userDate, err := time.ParseInLocation("02/01/06", dateStr, a.loc)
			if err != nil {
				return fmt.Errorf("Failed to parse date, please use DD/MM/YY format: %w", err)
			}

			all, err := a.st.ListSessions(cmd.Context(), 0)
			if err != nil {
				return err
			}
			var onDay []models.TrainingSession
			for _, s := range all {
				if s.StartTime.In(a.loc).Format("2006-01-02") == userDate.Format("2006-01-02") {
					onDay = append(onDay, s)
				}
			}
			if len(onDay) == 0 {
				fmt.Println(magenta("No sessions found on that date."))
				return nil
			}

			fmt.Println(boldGreen("Training Sessions on:"), yellow(userDate.Format("2006-01-02")))
			fmt.Println(strings.Repeat("=", 50))
			for i := len(onDay) - 1; i >= 0; i-- {
				printSavedSession(onDay[i], a.loc)
			}
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("Please provide a session ID or use the --date flag")
		}
		session, err := a.st.GetSessionByID(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("Failed to load session: %w", err)
		}
		printSavedSession(*session, a.loc)
		return nil
	},
}

func printSavedSession(session models.TrainingSession, loc *time.Location) {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	magenta := color.New(color.FgMagenta).SprintFunc()

	fmt.Printf("\n%s %s\n", boldGreen("Session"), session.ID)
	if session.WorkoutID != "" {
		fmt.Printf("   %s: %s\n", cyan("Workout"), session.WorkoutID)
	}
	fmt.Printf("   %s: %s\n", cyan("Start Time"), session.StartTime.In(loc).Format(time.RFC1123))
	if session.EndTime != nil {
		fmt.Printf("   %s: %s\n", blue("End Time"), session.EndTime.In(loc).Format(time.RFC1123))
	}
	fmt.Printf("   %s: %s\n", red("Duration"), session.Duration().Round(time.Second))
	if session.Notes != "" {
		fmt.Printf("   %s: %s\n", magenta("Session Notes"), session.Notes)
	}
	fmt.Println(strings.Repeat("─", 50))

	if len(session.Exercises) == 0 {
		fmt.Println("   " + magenta("No exercises found in this session."))
		return
	}
	for j, se := range session.Exercises {
		fmt.Printf("%s %d. %s\n", boldGreen("Exercise"), j+1, se.Exercise.Name)
		if se.Exercise.Category != "" {
			fmt.Printf("   %s: %s\n", cyan("Category"), se.Exercise.Category)
		}
		if se.Notes != "" {
			fmt.Printf("   %s: %s\n", cyan("Notes"), se.Notes)
		}
		printSetTable(se.Sets)
		fmt.Println()
	}
}

func init() {
	lookSessionCmd.Flags().StringVarP(&dateStr, "date", "d", "", "Session date (DD/MM/YY)")
	rootCmd.AddCommand(lookSessionCmd)
}
