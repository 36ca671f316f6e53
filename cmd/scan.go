// File: cmd/scan.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/example/studyroom-bot/internal/booking"
	"github.com/example/studyroom-bot/internal/browser"
	"github.com/example/studyroom-bot/internal/config"
	"github.com/example/studyroom-bot/internal/credentials"
	"github.com/example/studyroom-bot/internal/observability"
	"github.com/example/studyroom-bot/internal/portal"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List currently bookable slots without booking anything",
	Long: `Authenticates with the first credential set, opens the listing for
the configured location and resource category and prints the availability
snapshot. Nothing is reserved.`,
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

		// The scan only needs one session; the first account does the
		// looking.
		session, err := manager.NewSession(ctx, sets[0].Account)
		if err != nil {
			return err
		}
		defer session.Close()

		client := portal.NewClient(logger, session, cfg.LoginURL, cfg.Booking.SlotMinutes)
		if err := client.Login(ctx, sets[0]); err != nil {
			return err
		}
		if err := client.OpenListing(ctx, cfg.Location, cfg.ResourceCategory); err != nil {
			return err
		}
		slots, err := client.AvailableSlots(ctx)
		if err != nil {
			return err
		}

		start, end := cfg.Window()
		window := booking.Window{Start: start, End: end}

		if len(slots) == 0 {
			fmt.Println("No available slots.")
			return nil
		}
		fmt.Printf("Available slots (%s, %s):\n", cfg.Location, cfg.ResourceCategory)
		for _, slot := range slots {
			marker := " "
			if window.Contains(slot) {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, slot)
		}
		fmt.Printf("Slots marked * fall inside the %s-%s window.\n", start, end)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
