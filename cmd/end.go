package cmd

import (
	"fmt"
	"time"

	"github.com/misterclayt0n/podium/internal/utils"
	"github.com/spf13/cobra"
)

var endSessionCmd = &cobra.Command{
	Use:   "end-session",
	Short: "End the current training session and update achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("No active session")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("Failed to load session: %w", err)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Save to database.
		if err := a.st.SaveSession(cmd.Context(), state.ToSession(time.Now().UTC())); err != nil {
			return fmt.Errorf("Failed to save session: %w", err)
		}

		// Clear temp file.
		if err := utils.ClearSessionState(); err != nil {
			return fmt.Errorf("Failed to clear session: %w", err)
		}

		fmt.Println("✅ Session saved successfully")
		return a.recomputeAndReport(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(endSessionCmd)
}
