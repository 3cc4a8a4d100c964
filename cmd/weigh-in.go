package cmd

import (
	"fmt"
	"strconv"

	"github.com/misterclayt0n/podium/internal/models"
	"github.com/spf13/cobra"
)

var weighInUnit string

var weighInCmd = &cobra.Command{
	Use:   "weigh-in [weight]",
	Short: "Log your body weight; strength-to-body-weight achievements use the latest entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		weight, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("Invalid weight %q", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.st.AddBodyWeight(cmd.Context(), models.BodyWeightEntry{Weight: weight, Unit: weighInUnit})
		if err != nil {
			return fmt.Errorf("Failed to save body weight: %w", err)
		}
		fmt.Printf("✅ Logged body weight %s\n", formatWeight(entry.Weight, entry.Unit))
		return a.recomputeAndReport(cmd.Context())
	},
}

func init() {
	weighInCmd.Flags().StringVarP(&weighInUnit, "unit", "u", "kg", "Weight unit (kg or lb)")
	rootCmd.AddCommand(weighInCmd)
}
