// File: cmd/roombot/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/studyroom-bot/cmd"
	"github.com/example/studyroom-bot/internal/observability"
)

func main() {
	// A deployment platform's execution limit shows up here as SIGTERM;
	// the in-flight agent is abandoned and the portal's slot hold
	// expires on its own.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
