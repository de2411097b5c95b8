package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/saulo-duarte/exam-prep-lambda/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		auth.Init()

		raw, _ := cmd.Flags().GetString("user")
		userID := uuid.New()
		if raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("--user: %w", err)
			}
			userID = parsed
		}
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		tok, err := auth.GenerateJWT(userID.String(), strings.ToUpper(role), ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "User id (random when empty)")
	tokenCmd.Flags().String("role", "USER", "Role claim, e.g. ADMIN")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
