package cmd

import (
	"fmt"

	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/spf13/cobra"
)

var resetCatalog bool

var initSetupCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and seed the built-in achievement catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return fmt.Errorf("Failed to initialize database: %w", err)
		}
		defer a.Close()

		defs, err := a.st.ListDefinitions(cmd.Context())
		if err != nil {
			return err
		}
		if len(defs) > 0 && !resetCatalog {
			fmt.Printf("✅ Database ready (%d achievements already defined)\n", len(defs))
			return nil
		}

		catalog, err := achievement.DefaultCatalog()
		if err != nil {
			return err
		}
		if err := a.st.ReplaceCatalog(cmd.Context(), catalog); err != nil {
			return fmt.Errorf("Failed to seed catalog: %w", err)
		}
		fmt.Printf("✅ Database initialized with %d achievements\n", len(catalog))
		return nil
	},
}

func init() {
	initSetupCmd.Flags().BoolVar(&resetCatalog, "reset-catalog", false, "Replace the stored catalog with the built-in one")
	rootCmd.AddCommand(initSetupCmd)
}
