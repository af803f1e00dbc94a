package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"page-summarizer/internal/config"
	"page-summarizer/internal/domain"
	"page-summarizer/internal/infra/logging"
	"page-summarizer/internal/infra/security"
	"page-summarizer/internal/usecase"
)

var (
	seedUsername string
	seedPassword string
)

// seedCmd creates an account ahead of time, e.g. for manual end-to-end testing.
var seedCmd = &cobra.Command{
	Use:   "seed-user",
	Short: "Create a user account if it does not exist yet",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedUsername, "username", "", "username to create")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "password for the new user")
	_ = seedCmd.MarkFlagRequired("username")
	_ = seedCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, closeUsers, err := openUserRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeUsers()

	hasher, err := security.NewPasswordHasher(cfg.Security.BcryptCost, cfg.Security.PasswordPepper)
	if err != nil {
		return err
	}
	authUC := usecase.NewAuthUseCase(users, hasher, logger, cfg.Runtime.Dev)

	_, err = authUC.Register(ctx, seedUsername, seedPassword)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		fmt.Fprintf(cmd.OutOrStdout(), "user %q already present. No changes.\n", seedUsername)
		return nil
	case err != nil:
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %q\n", seedUsername)
	return nil
}
