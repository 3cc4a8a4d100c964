package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage achievement definitions",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the achievement catalog with the definitions in a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		defs, err := achievement.ParseCatalog(data)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.st.ReplaceCatalog(cmd.Context(), defs); err != nil {
			return fmt.Errorf("Failed to import catalog: %w", err)
		}
		fmt.Printf("✅ Imported %d achievements\n", len(defs))
		return a.recomputeAndReport(cmd.Context())
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List achievement definitions",
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
		if len(defs) == 0 {
			fmt.Println("No achievements defined. Run `podium init` to seed the built-in catalog.")
			return nil
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		for _, def := range defs {
			extra := ""
			if def.WindowDays != nil {
				extra += fmt.Sprintf(", %d day window", *def.WindowDays)
			}
			if def.Repeatable {
				extra += ", repeatable"
			}
			fmt.Printf("  %s %s [%s]\n", tierColor(string(def.Tier))("●"), bold(def.Title), def.ID)
			fmt.Printf("    %s\n", faint(fmt.Sprintf("%s ≥ %g %s%s",
				def.Metric, def.TargetValue, achievement.MetricUnit(def.Metric, a.cfg.Engine.CanonicalUnit), extra)))
		}
		return nil
	},
}

// tierColor maps a tier to its medal color.
func tierColor(tier string) func(a ...interface{}) string {
	switch tier {
	case "silver":
		return color.New(color.FgWhite, color.Bold).SprintFunc()
	case "gold":
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case "platinum":
		return color.New(color.FgCyan, color.Bold).SprintFunc()
	}
	return color.New(color.FgRed).SprintFunc()
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
