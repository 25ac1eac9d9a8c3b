package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyease/internal/config"
	"github.com/jonathan/applyease/internal/server"
)

var (
	tokenUserID string
	tokenEmail  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	Long:  "Sign a token with JWT_SECRET for the given user, for calling the authenticated routes of a local server.",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User ID to put in the _id claim (required)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email claim")
	_ = tokenCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	token, err := server.NewJWTService(jwtCfg).GenerateToken(tokenUserID, tokenEmail)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
