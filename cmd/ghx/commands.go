package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GHXPortal/internal/auth"
	"GHXPortal/internal/config"
	"GHXPortal/internal/program"
	"GHXPortal/pkg/routes"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const commandTimeout = 2 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			routes.CoreModule,
			routes.HTTPModule,
			routes.WithZapLogger(),
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

var adminFlags struct {
	name     string
	email    string
	password string
}

var setupAdminCmd = &cobra.Command{
	Use:   "setup-admin",
	Short: "Create the first admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), func(ctx context.Context, p oneShotDeps) error {
			user, err := p.Users.SetupAdmin(ctx, auth.SetupAdminRequest{
				Name:     adminFlags.name,
				Email:    adminFlags.email,
				Password: adminFlags.password,
				SetupKey: p.Config.AdminSetupKey,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s) ready\n", user.Email, user.ID.Hex())
			return nil
		})
	},
}

var deadlineDays int

var notifyDeadlinesCmd = &cobra.Command{
	Use:   "notify-deadlines",
	Short: "Announce programs whose application deadline is near",
	Long: `Sends a deadline reminder for every published or active program whose
application deadline falls within the next --days days. Intended to be run
from the host scheduler, e.g. once a day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), func(ctx context.Context, p oneShotDeps) error {
			sent, err := notifyDeadlines(ctx, p.Programs, p.Notifier, p.Logger, deadlineDays, time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "%d deadline reminder(s) sent\n", sent)
			return err
		})
	},
}

func init() {
	setupAdminCmd.Flags().StringVar(&adminFlags.name, "name", "Administrator", "display name")
	setupAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "admin email")
	setupAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "admin password")
	_ = setupAdminCmd.MarkFlagRequired("email")
	_ = setupAdminCmd.MarkFlagRequired("password")

	notifyDeadlinesCmd.Flags().IntVar(&deadlineDays, "days", 3, "look-ahead window in days")
}

type oneShotDeps struct {
	fx.In

	Config   *config.AppConfig
	Logger   *zap.Logger
	Users    *auth.UserService
	Programs *program.ProgramService
	Notifier program.Notifier
}

// runOnce starts the core module, runs fn and stops the app again.
func runOnce(ctx context.Context, fn func(ctx context.Context, p oneShotDeps) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var deps oneShotDeps
	app := fx.New(
		routes.CoreModule,
		routes.WithZapLogger(),
		fx.Populate(&deps),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runCtx, cancelRun := context.WithTimeout(ctx, commandTimeout)
	runErr := fn(runCtx, deps)
	cancelRun()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	return errors.Join(runErr, app.Stop(stopCtx))
}

// notifyDeadlines sends one reminder per program and keeps going past
// failures; the joined error lists every program that failed.
func notifyDeadlines(ctx context.Context, programs *program.ProgramService, notifier program.Notifier, logger *zap.Logger, days int, now time.Time) (int, error) {
	list, err := programs.ProgramsWithDeadlineWithin(ctx, days)
	if err != nil {
		return 0, err
	}
	sent := 0
	var errs []error
	for _, p := range list {
		daysLeft, ok := p.DaysUntilDeadline(now)
		if !ok || daysLeft < 0 {
			continue
		}
		if err := notifier.NotifyProgramDeadlineApproaching(ctx, p, daysLeft); err != nil {
			logger.Warn("deadline reminder failed", zap.String("program_id", p.ID.Hex()), zap.Error(err))
			errs = append(errs, fmt.Errorf("program %s: %w", p.ID.Hex(), err))
			continue
		}
		sent++
	}
	logger.Info("deadline reminders sent", zap.Int("programs", len(list)), zap.Int("sent", sent))
	return sent, errors.Join(errs...)
}
