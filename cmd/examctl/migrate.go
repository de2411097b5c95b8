package main

import (
	"github.com/spf13/cobra"

	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		config.Logger.WithField("tables", len(database.Models())).Info("Schema migrated")
		return nil
	},
}
