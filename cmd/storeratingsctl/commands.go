package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/db"
	"github.com/geocoder89/storeratings/internal/repo/postgres"
	"github.com/spf13/cobra"
)

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "storeratingsctl",
		Short:         "Operational commands for the store ratings service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var dbURL string
	root.PersistentFlags().StringVar(&dbURL, "db-url", cfg.DBURL, "postgres connection URL (defaults to DATABASE_URL / DB_*)")

	root.AddCommand(newMigrateCmd(&dbURL), newSeedAdminCmd(cfg, &dbURL))
	return root
}

func newMigrateCmd(dbURL *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.MigrateUp(*dbURL); err != nil {
				return err
			}
			slog.Info("migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			if err := db.MigrateDown(*dbURL, steps); err != nil {
				return err
			}
			slog.Info("migrations rolled back", "steps", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func newSeedAdminCmd(cfg config.Config, dbURL *string) *cobra.Command {
	seed := db.AdminSeed{Email: cfg.AdminEmail, Password: cfg.AdminPassword, Name: cfg.AdminName}

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if seed.Email == "" || seed.Password == "" {
				return fmt.Errorf("admin email and password are required (ADMIN_EMAIL / ADMIN_PASSWORD or flags)")
			}

			ctx, cancel := config.WithParentTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			pool, err := db.NewPool(ctx, *dbURL, db.PoolConfig{MaxConns: 2})
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			created, err := db.EnsureAdminUser(ctx, postgres.NewUsersRepo(pool, nil), seed)
			if err != nil {
				return err
			}
			slog.Info("seed admin", "email", seed.Email, "created", created)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed.Email, "email", seed.Email, "admin email")
	cmd.Flags().StringVar(&seed.Password, "password", seed.Password, "admin password")
	cmd.Flags().StringVar(&seed.Name, "name", seed.Name, "admin display name")
	return cmd
}
