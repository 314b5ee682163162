package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"Kanban/internal/infrastructure"
)

func tokenCmd() *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user must be a positive user id")
			}
			secret := os.Getenv("SECRET_KEY")
			algorithm := os.Getenv("ALGORITHM")
			if algorithm == "" {
				algorithm = "HS256"
			}

			tokens, err := infrastructure.NewTokenService(secret, algorithm)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id to put in the subject claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*time.Minute, "token lifetime")
	return cmd
}
