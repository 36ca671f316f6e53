// File: internal/booking/agent_test.go
package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/studyroom-bot/internal/browser"
	"github.com/example/studyroom-bot/internal/credentials"
	"github.com/example/studyroom-bot/internal/portal"
)

// fakePortal scripts the portal's responses so the state machine can be
// exercised without a browser.
type fakePortal struct {
	slots []portal.Slot

	loginErr   error
	listingErr error
	scanErr    error
	reserveErr error
	confirmErr error

	loginCalled   bool
	listingCalled bool
	reserved      *portal.Slot
	confirmCalled bool
	screenshots   []string
}

func (f *fakePortal) Login(ctx context.Context, creds credentials.Set) error {
	f.loginCalled = true
	return f.loginErr
}

func (f *fakePortal) OpenListing(ctx context.Context, location, category string) error {
	f.listingCalled = true
	return f.listingErr
}

func (f *fakePortal) AvailableSlots(ctx context.Context) ([]portal.Slot, error) {
	return f.slots, f.scanErr
}

func (f *fakePortal) Reserve(ctx context.Context, slot portal.Slot) error {
	f.reserved = &slot
	return f.reserveErr
}

func (f *fakePortal) Confirm(ctx context.Context) error {
	f.confirmCalled = true
	return f.confirmErr
}

func (f *fakePortal) Screenshot(ctx context.Context, path string) error {
	f.screenshots = append(f.screenshots, path)
	return nil
}

func testParams(t *testing.T) Params {
	return Params{
		Location:            "Business Library",
		ResourceCategory:    "PC / Monitor",
		PreferredResourceID: "A1",
		Window:              window(t, "0800", "1800"),
		OutputFolder:        t.TempDir(),
	}
}

func newTestAgent(t *testing.T, p Portal) *Agent {
	creds := credentials.Set{Account: "student1", Secret: "hunter2"}
	return NewAgent(zap.NewNop(), p, creds, testParams(t), "run-1")
}

func TestAgentBooksHappyPath(t *testing.T) {
	fake := &fakePortal{slots: []portal.Slot{
		slotAt("A1", 9, 0, 11, 0),
		slotAt("B2", 8, 0, 10, 0),
	}}
	agent := newTestAgent(t, fake)

	outcome := agent.Run(context.Background())

	assert.Equal(t, StateBooked, agent.State())
	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.Reason)
	require.NotNil(t, outcome.Slot)
	assert.Equal(t, "A1", outcome.Slot.ResourceID)
	assert.Equal(t, "Booked", outcome.FinalState)
	assert.Equal(t, "student1", outcome.Account)
	assert.Equal(t, "run-1", outcome.RunID)
	assert.WithinDuration(t, time.Now(), outcome.Timestamp, time.Minute)

	require.NotNil(t, fake.reserved)
	assert.Equal(t, "A1", fake.reserved.ResourceID)
	assert.True(t, fake.confirmCalled)
	assert.Len(t, fake.screenshots, 1)
}

func TestAgentNoSlotAvailable(t *testing.T) {
	fake := &fakePortal{} // scan returns nothing
	agent := newTestAgent(t, fake)

	outcome := agent.Run(context.Background())

	assert.Equal(t, StateFailed, agent.State())
	assert.False(t, outcome.Success)
	assert.Equal(t, ReasonNoSlotAvailable, outcome.Reason)
	assert.Nil(t, outcome.Slot)

	// No transaction beyond Searching: the reserve/confirm steps were
	// never invoked.
	assert.True(t, fake.loginCalled)
	assert.True(t, fake.listingCalled)
	assert.Nil(t, fake.reserved)
	assert.False(t, fake.confirmCalled)
}

func TestAgentConfirmationRejected(t *testing.T) {
	// Error banner at the confirmation step: ConfirmationPending -> Failed
	// with reason TransactionError.
	fake := &fakePortal{
		slots:      []portal.Slot{slotAt("A1", 9, 0, 11, 0)},
		confirmErr: portal.ErrTransaction,
	}
	agent := newTestAgent(t, fake)

	outcome := agent.Run(context.Background())

	assert.Equal(t, StateFailed, agent.State())
	assert.False(t, outcome.Success)
	assert.Equal(t, ReasonTransactionError, outcome.Reason)
	assert.True(t, fake.confirmCalled)
	assert.Empty(t, fake.screenshots, "no screenshot for a failed booking")
}

func TestAgentFailureReasons(t *testing.T) {
	cases := []struct {
		name   string
		fake   *fakePortal
		reason string
	}{
		{
			name:   "authentication failure",
			fake:   &fakePortal{loginErr: portal.ErrAuthentication},
			reason: ReasonAuthenticationError,
		},
		{
			name:   "navigation failure",
			fake:   &fakePortal{listingErr: portal.ErrNavigation},
			reason: ReasonNavigationError,
		},
		{
			name: "element lookup timeout mid-transaction",
			fake: &fakePortal{
				slots:      []portal.Slot{slotAt("A1", 9, 0, 11, 0)},
				reserveErr: browser.ErrElementNotFound,
			},
			reason: ReasonElementNotFound,
		},
		{
			name:   "navigation timeout during scan",
			fake:   &fakePortal{scanErr: browser.ErrNavigationTimeout},
			reason: ReasonNavigationTimeout,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agent := newTestAgent(t, tc.fake)
			outcome := agent.Run(context.Background())

			assert.Equal(t, StateFailed, agent.State())
			assert.False(t, outcome.Success)
			assert.Equal(t, tc.reason, outcome.Reason)
		})
	}
}

func TestAgentAbortLeavesAbortedReason(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakePortal{loginErr: ctx.Err()}
	agent := newTestAgent(t, fake)

	outcome := agent.Run(ctx)
	assert.Equal(t, ReasonAborted, outcome.Reason)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "ConfirmationPending", StateConfirmationPending.String())
	assert.Equal(t, "State(42)", State(42).String())
}
