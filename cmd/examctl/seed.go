package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saulo-duarte/exam-prep-lambda/internal/database"
	"github.com/saulo-duarte/exam-prep-lambda/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML question bank",
	Long:  "seed creates the knowledge tree and questions described by a YAML bank. Existing codes and stems are left untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return fmt.Errorf("--file is required")
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		bank, err := seed.Parse(f)
		if err != nil {
			return err
		}

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
		}

		res, err := seed.Apply(cmd.Context(), db, bank)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "topics: %d created, %d reused\nquestions: %d created, %d skipped\n",
			res.TopicsCreated, res.TopicsReused, res.QuestionsCreated, res.QuestionsSkipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringP("file", "f", "", "Path to the YAML question bank")
	seedCmd.Flags().Bool("migrate", false, "Migrate the schema before loading")
}
