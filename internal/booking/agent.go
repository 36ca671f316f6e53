// File: internal/booking/agent.go

// Package booking holds the slot-selection algorithm and the booking
// transaction state machine. One Agent serves exactly one credential set
// per run and produces exactly one Outcome.
package booking

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/example/studyroom-bot/internal/browser"
	"github.com/example/studyroom-bot/internal/credentials"
	"github.com/example/studyroom-bot/internal/portal"
)

// State is a position in the booking transaction state machine.
type State int

const (
	StateIdle State = iota
	StateLoggedIn
	StateSearching
	StateSlotSelected
	StateConfirmationPending
	StateBooked
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:                "Idle",
	StateLoggedIn:            "LoggedIn",
	StateSearching:           "Searching",
	StateSlotSelected:        "SlotSelected",
	StateConfirmationPending: "ConfirmationPending",
	StateBooked:              "Booked",
	StateFailed:              "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Failure reasons recorded on outcomes, one per error class.
const (
	ReasonAuthenticationError = "AuthenticationError"
	ReasonNavigationError     = "NavigationError"
	ReasonNoSlotAvailable     = "NoSlotAvailable"
	ReasonElementNotFound     = "ElementNotFound"
	ReasonNavigationTimeout   = "NavigationTimeout"
	ReasonTransactionError    = "TransactionError"
	ReasonAborted             = "Aborted"
)

// Outcome is the write-once record of one agent run.
type Outcome struct {
	RunID      string       `json:"run_id"`
	Account    string       `json:"account"`
	Slot       *portal.Slot `json:"slot,omitempty"`
	Success    bool         `json:"success"`
	Timestamp  time.Time    `json:"timestamp"`
	Reason     string       `json:"reason,omitempty"`
	FinalState string       `json:"final_state"`
}

// Portal is the capability set an agent needs from the booking site.
// portal.Client implements it; tests substitute a scripted fake.
type Portal interface {
	Login(ctx context.Context, creds credentials.Set) error
	OpenListing(ctx context.Context, location, category string) error
	AvailableSlots(ctx context.Context) ([]portal.Slot, error)
	Reserve(ctx context.Context, slot portal.Slot) error
	Confirm(ctx context.Context) error
	Screenshot(ctx context.Context, path string) error
}

// Params carries the run-scoped configuration an agent books against.
type Params struct {
	Location            string
	ResourceCategory    string
	PreferredResourceID string
	Window              Window
	OutputFolder        string
}

// Agent drives one booking transaction to a terminal state. It never
// retries mid-transaction: the portal's slot holds are single-use and
// time-limited, so a failed transaction is abandoned and reported.
type Agent struct {
	logger *zap.Logger
	portal Portal
	creds  credentials.Set
	params Params
	runID  string

	state State
}

// NewAgent builds an agent for one credential set.
func NewAgent(logger *zap.Logger, p Portal, creds credentials.Set, params Params, runID string) *Agent {
	return &Agent{
		logger: logger.Named("agent").With(zap.String("account", creds.Account)),
		portal: p,
		creds:  creds,
		params: params,
		runID:  runID,
		state:  StateIdle,
	}
}

// State returns the agent's current transaction state.
func (a *Agent) State() State { return a.state }

// Run executes the transaction state machine and always returns an
// Outcome; errors never escape to crash the overall run.
func (a *Agent) Run(ctx context.Context) Outcome {
	slot, err := a.transact(ctx)
	if err != nil {
		a.transition(StateFailed)
		reason := failureReason(err)
		a.logger.Warn("Booking failed",
			zap.String("reason", reason), zap.Error(err))
		return a.outcome(nil, false, reason)
	}

	a.logger.Info("Booking succeeded", zap.String("slot", slot.String()))
	return a.outcome(&slot, true, "")
}

func (a *Agent) transact(ctx context.Context) (portal.Slot, error) {
	// Idle -> LoggedIn
	if err := a.portal.Login(ctx, a.creds); err != nil {
		return portal.Slot{}, err
	}
	a.transition(StateLoggedIn)

	// LoggedIn -> Searching
	if err := a.portal.OpenListing(ctx, a.params.Location, a.params.ResourceCategory); err != nil {
		return portal.Slot{}, err
	}
	a.transition(StateSearching)

	// Searching -> SlotSelected
	slots, err := a.portal.AvailableSlots(ctx)
	if err != nil {
		return portal.Slot{}, err
	}
	slot, err := SelectSlot(slots, a.params.PreferredResourceID, a.params.Window)
	if err != nil {
		return portal.Slot{}, err
	}
	a.transition(StateSlotSelected)
	a.logger.Info("Selected slot", zap.String("slot", slot.String()))

	// SlotSelected -> ConfirmationPending
	if err := a.portal.Reserve(ctx, slot); err != nil {
		return portal.Slot{}, err
	}
	a.transition(StateConfirmationPending)

	// ConfirmationPending -> Booked
	if err := a.portal.Confirm(ctx); err != nil {
		return portal.Slot{}, err
	}
	a.transition(StateBooked)

	// Keep a picture of the confirmation page. Best effort: the booking
	// already stands, so a failed capture only warrants a warning.
	if err := a.portal.Screenshot(ctx, a.screenshotPath(slot)); err != nil {
		a.logger.Warn("Could not capture confirmation screenshot", zap.Error(err))
	}

	return slot, nil
}

func (a *Agent) transition(next State) {
	a.logger.Debug("Transaction state change",
		zap.Stringer("from", a.state), zap.Stringer("to", next))
	a.state = next
}

func (a *Agent) outcome(slot *portal.Slot, success bool, reason string) Outcome {
	return Outcome{
		RunID:      a.runID,
		Account:    a.creds.Account,
		Slot:       slot,
		Success:    success,
		Timestamp:  time.Now(),
		Reason:     reason,
		FinalState: a.state.String(),
	}
}

func (a *Agent) screenshotPath(slot portal.Slot) string {
	now := time.Now()
	name := fmt.Sprintf("%s-%s-%s.png", a.creds.Account, now.Format("15-04"), slot.ResourceID)
	return filepath.Join(a.params.OutputFolder, now.Format("2006-01-02"), name)
}

// failureReason maps an error from any transaction step to the reason
// recorded on the outcome. Order matters: portal errors wrap browser
// errors, so the specific classes come first.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNoSlotAvailable):
		return ReasonNoSlotAvailable
	case errors.Is(err, portal.ErrTransaction):
		return ReasonTransactionError
	case errors.Is(err, portal.ErrAuthentication):
		return ReasonAuthenticationError
	case errors.Is(err, portal.ErrNavigation):
		return ReasonNavigationError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonAborted
	case errors.Is(err, browser.ErrElementNotFound):
		return ReasonElementNotFound
	case errors.Is(err, browser.ErrNavigationTimeout):
		return ReasonNavigationTimeout
	default:
		return ReasonTransactionError
	}
}
