// File: internal/orchestrator/orchestrator.go

// Package orchestrator fans a booking run out across credential sets.
// Each credential set gets its own agent with its own browser session;
// there is no shared mutable state between agents, and a failure for one
// never prevents the next from being attempted.
package orchestrator

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/studyroom-bot/internal/booking"
	"github.com/example/studyroom-bot/internal/credentials"
)

// AgentRunner runs one credential set's booking transaction and returns
// its outcome. The production runner opens a browser session, builds a
// portal client and a booking.Agent; tests substitute fakes.
type AgentRunner func(ctx context.Context, creds credentials.Set) booking.Outcome

// OutcomeSink receives each terminal outcome. Append errors are reported
// by Run but do not stop remaining agents.
type OutcomeSink interface {
	Append(o booking.Outcome) error
}

// Orchestrator executes one agent per credential set, sequentially or in
// parallel per the configured policy.
type Orchestrator struct {
	logger   *zap.Logger
	runner   AgentRunner
	sink     OutcomeSink
	parallel bool
}

// New creates an orchestrator with the given execution policy.
func New(logger *zap.Logger, runner AgentRunner, sink OutcomeSink, parallel bool) *Orchestrator {
	return &Orchestrator{
		logger:   logger.Named("orchestrator"),
		runner:   runner,
		sink:     sink,
		parallel: parallel,
	}
}

// Run executes every credential set and records the outcomes. Individual
// booking failures are reported through the outcome log, never as an
// error from Run; only a broken outcome sink surfaces here. Agents
// aborted by external cancellation leave no record, matching the
// portal's own hold expiry.
func (o *Orchestrator) Run(ctx context.Context, sets []credentials.Set) error {
	o.logger.Info("Starting booking run",
		zap.Int("credential_sets", len(sets)), zap.Bool("parallel", o.parallel))

	if !o.parallel {
		for _, creds := range sets {
			if ctx.Err() != nil {
				o.logger.Warn("Run aborted; skipping remaining credential sets",
					zap.String("next_account", creds.Account))
				return ctx.Err()
			}
			if err := o.record(o.runner(ctx, creds)); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, creds := range sets {
		g.Go(func() error {
			return o.record(o.runner(gctx, creds))
		})
	}
	return g.Wait()
}

// record persists one outcome. Aborted runs are deliberately absent from
// the log: the portal's slot hold expires on its own.
func (o *Orchestrator) record(outcome booking.Outcome) error {
	if outcome.Reason == booking.ReasonAborted {
		o.logger.Warn("Agent aborted; no outcome recorded",
			zap.String("account", outcome.Account))
		return nil
	}
	if err := o.sink.Append(outcome); err != nil {
		o.logger.Error("Failed to persist outcome",
			zap.String("account", outcome.Account), zap.Error(err))
		return err
	}
	o.logger.Info("Recorded outcome",
		zap.String("account", outcome.Account),
		zap.Bool("success", outcome.Success),
		zap.String("reason", outcome.Reason))
	return nil
}
