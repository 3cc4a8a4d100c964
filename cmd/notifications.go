package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/storage"
	"github.com/spf13/cobra"
)

var notificationsLimit int

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show the most recent achievement notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.st.ListNotifications(cmd.Context(), notificationsLimit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("Nothing yet.")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		for _, n := range list {
			icon := "🏆"
			if n.Kind == storage.KindDeadlineApproaching {
				icon = "⏰"
			}
			fmt.Printf("%s %s %s\n", faint(n.CreatedAt.In(a.loc).Format("02 Jan 15:04")), icon, n.Title)
		}
		return nil
	},
}

func init() {
	notificationsCmd.Flags().IntVarP(&notificationsLimit, "limit", "l", 20, "How many notifications to show")
	rootCmd.AddCommand(notificationsCmd)
}
