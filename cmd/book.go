// File: cmd/book.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/example/studyroom-bot/internal/booking"
	"github.com/example/studyroom-bot/internal/browser"
	"github.com/example/studyroom-bot/internal/config"
	"github.com/example/studyroom-bot/internal/credentials"
	"github.com/example/studyroom-bot/internal/observability"
	"github.com/example/studyroom-bot/internal/orchestrator"
	"github.com/example/studyroom-bot/internal/outcomes"
	"github.com/example/studyroom-bot/internal/portal"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Run one booking attempt per configured credential set",
	Long: `Logs in with every credential set in turn, scans the availability
grid for the configured location and resource category, selects the best
slot inside the allowed time window and drives the booking transaction to
confirmation. Individual booking failures land in the outcome log; the
command only fails on unrecoverable startup errors.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := observability.GetLogger()

		cfg, err := config.NewConfigFromViper(viper.GetViper())
		if err != nil {
			return err
		}
		sets, err := credentials.Load(envFile)
		if err != nil {
			return fmt.Errorf("loading credentials: %w", err)
		}

		runID := uuid.New().String()
		start, end := cfg.Window()
		logger.Info("Starting booking run",
			zap.String("runID", runID),
			zap.String("location", cfg.Location),
			zap.String("category", cfg.ResourceCategory),
			zap.String("preferred", cfg.PreferredResourceID),
			zap.Stringer("window_start", start),
			zap.Stringer("window_end", end),
			zap.Int("accounts", len(sets)),
		)

		writer, err := outcomes.NewWriter(cfg.OutputFolder)
		if err != nil {
			return err
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Warn("Failed to close outcome log", zap.Error(err))
			}
		}()

		manager, err := browser.NewManager(ctx, logger, cfg.Browser)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := manager.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Error during browser shutdown", zap.Error(err))
			}
		}()

		params := booking.Params{
			Location:            cfg.Location,
			ResourceCategory:    cfg.ResourceCategory,
			PreferredResourceID: cfg.PreferredResourceID,
			Window:              booking.Window{Start: start, End: end},
			OutputFolder:        cfg.OutputFolder,
		}

		runner := newAgentRunner(logger, manager, cfg, params, runID)
		orch := orchestrator.New(logger, runner, writer, cfg.Booking.Parallel)
		if err := orch.Run(ctx, sets); err != nil {
			return err
		}

		logger.Info("Booking run complete", zap.String("runID", runID))
		fmt.Printf("Run complete. Outcomes appended to %s/%s\n", cfg.OutputFolder, outcomes.LogName)
		return nil
	},
}

// newAgentRunner builds the production AgentRunner: a fresh, exclusive
// browser session and portal client per credential set. Session setup
// failures become failed outcomes so the remaining credential sets still
// get their turn.
func newAgentRunner(
	logger *zap.Logger,
	manager *browser.Manager,
	cfg *config.Config,
	params booking.Params,
	runID string,
) orchestrator.AgentRunner {
	return func(ctx context.Context, creds credentials.Set) booking.Outcome {
		session, err := manager.NewSession(ctx, creds.Account)
		if err != nil {
			if ctx.Err() != nil {
				// The run was cancelled before a session could open;
				// aborted agents leave no record in the outcome log.
				logger.Warn("Run aborted before a session could be opened",
					zap.String("account", creds.Account))
				return booking.Outcome{
					RunID:      runID,
					Account:    creds.Account,
					Success:    false,
					Timestamp:  time.Now(),
					Reason:     booking.ReasonAborted,
					FinalState: booking.StateFailed.String(),
				}
			}
			logger.Error("Could not open browser session",
				zap.String("account", creds.Account), zap.Error(err))
			return booking.Outcome{
				RunID:      runID,
				Account:    creds.Account,
				Success:    false,
				Timestamp:  time.Now(),
				Reason:     booking.ReasonNavigationTimeout,
				FinalState: booking.StateFailed.String(),
			}
		}
		defer session.Close()

		client := portal.NewClient(logger, session, cfg.LoginURL, cfg.Booking.SlotMinutes)
		agent := booking.NewAgent(logger, client, creds, params, runID)
		return agent.Run(ctx)
	}
}

func init() {
	rootCmd.AddCommand(bookCmd)
}
