package main

import (
	"context"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "examctl",
	Short: "Operate the adaptive assessment engine",
	Long:  "examctl runs the assessment API locally, migrates its schema and loads question banks.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("sqlite", "", "Path to a SQLite database (overrides DATABASE_DSN)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}

// openDB returns the --sqlite database when the flag is set and the
// postgres database named by DATABASE_DSN otherwise.
func openDB(cmd *cobra.Command) (*gorm.DB, error) {
	if path, _ := cmd.Flags().GetString("sqlite"); path != "" {
		return config.OpenSQLite(path)
	}
	if err := config.Connect(context.Background(), config.GetEnv("DATABASE_DSN", "")); err != nil {
		return nil, err
	}
	return config.DB, nil
}
