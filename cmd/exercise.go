package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/spf13/cobra"
)

var (
	exerciseName     string
	exerciseCategory string
)

// exerciseImport is the layout of an import-exercises file.
type exerciseImport struct {
	Exercises []models.Exercise `toml:"exercise"`
}

var addExerciseCmd = &cobra.Command{
	Use:   "add-exercise",
	Short: "Create an exercise, or change the category of an existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ex, err := a.st.CreateExercise(cmd.Context(), models.Exercise{Name: exerciseName, Category: exerciseCategory})
		if err != nil {
			return fmt.Errorf("Failed to create exercise: %w", err)
		}

		fmt.Printf("✅ Saved exercise: %s (%s)\n", ex.Name, ex.Category)
		return nil
	},
}

var importExercisesCmd = &cobra.Command{
	Use:   "import-exercises [file]",
	Short: "Import exercises from TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var importData exerciseImport
		if err := toml.Unmarshal(data, &importData); err != nil {
			return fmt.Errorf("invalid TOML format: %w", err)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		for _, ex := range importData.Exercises {
			if _, err := a.st.CreateExercise(cmd.Context(), models.Exercise{Name: ex.Name, Category: ex.Category}); err != nil {
				return fmt.Errorf("failed to create exercise %s: %w", ex.Name, err)
			}
		}

		fmt.Printf("✅ Imported %d exercises\n", len(importData.Exercises))
		return nil
	},
}

var listExercisesCmd = &cobra.Command{
	Use:   "list-exercises",
	Short: "List every known exercise with its category",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		exercises, err := a.st.ListExercises(cmd.Context())
		if err != nil {
			return err
		}
		yellow := color.New(color.FgYellow).SprintFunc()
		for _, ex := range exercises {
			category := ex.Category
			if category == "" {
				category = "-"
			}
			fmt.Printf("  • %s  %s\n", yellow(ex.Name), category)
		}
		return nil
	},
}

func init() {
	addExerciseCmd.Flags().StringVarP(&exerciseName, "name", "n", "", "Exercise name")
	addExerciseCmd.Flags().StringVarP(&exerciseCategory, "category", "c", "", "Muscle group or modality (e.g. chest, cardio)")

	addExerciseCmd.MarkFlagRequired("name")
	addExerciseCmd.MarkFlagRequired("category")

	rootCmd.AddCommand(addExerciseCmd)
	rootCmd.AddCommand(importExercisesCmd)
	rootCmd.AddCommand(listExercisesCmd)
}
