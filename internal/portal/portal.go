// File: internal/portal/portal.go

// Package portal drives the university booking site through a browser
// session. The page structure is assumed fixed: login form field IDs,
// the location/category dropdowns and the calendar event markup are
// hard-wired to the target portal.
package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/studyroom-bot/internal/browser"
	"github.com/example/studyroom-bot/internal/credentials"
)

// Page selectors for the target portal.
const (
	usernameField = "#userNameInput"
	passwordField = "#passwordInput"

	locationSelect = "#lid"
	categorySelect = "#gid"
	listingMarker  = ".fc-view-harness"

	slotEvents    = "a.fc-timeline-event"
	submitTimes   = "#submit_times"
	termsAccept   = "#terms_accept"
	formSubmit    = "#btn-form-submit"
	errorBanner   = ".alert-danger"
	successMarker = "successfully booked"
)

// confirmationWait bounds the wait for the final success marker; the
// portal's confirmation round-trip is noticeably slower than its other
// pages.
const confirmationWait = 10 * time.Second

// Client runs the portal workflow over one browser session. One Client
// serves exactly one credential set; sessions are never shared.
type Client struct {
	logger   *zap.Logger
	session  *browser.Session
	loginURL string

	slotMinutes int
}

// NewClient wires a portal client to an exclusive browser session.
func NewClient(logger *zap.Logger, session *browser.Session, loginURL string, slotMinutes int) *Client {
	return &Client{
		logger:      logger.Named("portal"),
		session:     session,
		loginURL:    loginURL,
		slotMinutes: slotMinutes,
	}
}

// Login authenticates with the given credential set. Reaching the booking
// page (its location dropdown specifically) within the navigation timeout
// is the success criterion.
func (c *Client) Login(ctx context.Context, creds credentials.Set) error {
	c.logger.Info("Logging in", zap.String("account", creds.Account))

	if err := c.session.Navigate(ctx, c.loginURL); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if err := c.session.Type(ctx, usernameField, creds.Account); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if err := c.session.Type(ctx, passwordField, creds.Secret); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if err := c.session.Submit(ctx, passwordField); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	// The post-login page must present the booking controls.
	if err := c.session.WaitVisible(ctx, locationSelect, 0); err != nil {
		return fmt.Errorf("%w: post-login page did not appear: %w", ErrAuthentication, err)
	}

	c.logger.Info("Login succeeded", zap.String("account", creds.Account))
	return nil
}

// OpenListing navigates to the availability grid for the configured
// location and resource category.
func (c *Client) OpenListing(ctx context.Context, location, category string) error {
	c.logger.Info("Opening listing",
		zap.String("location", location), zap.String("category", category))

	if err := c.session.SelectByText(ctx, locationSelect, location); err != nil {
		return fmt.Errorf("%w: selecting location: %w", ErrNavigation, err)
	}
	if err := c.session.SelectByText(ctx, categorySelect, category); err != nil {
		return fmt.Errorf("%w: selecting category: %w", ErrNavigation, err)
	}
	if err := c.session.WaitVisible(ctx, listingMarker, 0); err != nil {
		return fmt.Errorf("%w: listing grid did not render: %w", ErrNavigation, err)
	}
	return nil
}

// AvailableSlots returns the currently free slots as a point-in-time
// snapshot of the listing grid. Callers needing a fresh view must call
// again.
func (c *Client) AvailableSlots(ctx context.Context) ([]Slot, error) {
	titles, err := c.session.Titles(ctx, slotEvents)
	if err != nil {
		return nil, fmt.Errorf("reading availability grid: %w", err)
	}

	slots := ParseSlots(titles, c.slotMinutes, c.logger)
	c.logger.Info("Scanned availability",
		zap.Int("rows", len(titles)), zap.Int("available", len(slots)))
	return slots, nil
}

// Reserve invokes the slot's selection action and submits the chosen
// times. Success means the portal is holding the slot and asking for
// confirmation (its terms checkbox is showing).
func (c *Client) Reserve(ctx context.Context, slot Slot) error {
	c.logger.Info("Reserving slot", zap.String("slot", slot.String()))

	if err := c.session.ClickByTitle(ctx, slotEvents, slot.Title()); err != nil {
		return fmt.Errorf("selecting slot %s: %w", slot, err)
	}
	if err := c.session.Click(ctx, submitTimes); err != nil {
		return fmt.Errorf("submitting selected times: %w", err)
	}
	if err := c.session.WaitVisible(ctx, termsAccept, 0); err != nil {
		return fmt.Errorf("confirmation request did not appear: %w", err)
	}
	return nil
}

// Confirm completes the final confirmation form. The success marker text
// must appear; an explicit error banner maps to ErrTransaction.
func (c *Client) Confirm(ctx context.Context) error {
	if err := c.session.Click(ctx, termsAccept); err != nil {
		return fmt.Errorf("accepting terms: %w", err)
	}
	if err := c.session.Click(ctx, formSubmit); err != nil {
		return fmt.Errorf("submitting confirmation form: %w", err)
	}

	if err := c.session.WaitForText(ctx, successMarker, confirmationWait); err != nil {
		if !errors.Is(err, browser.ErrElementNotFound) {
			return err
		}
		// No success marker. An error banner means the portal actively
		// rejected the booking rather than timing out.
		if banner, probeErr := c.session.HasVisible(ctx, errorBanner); probeErr == nil && banner {
			return ErrTransaction
		}
		return err
	}

	c.logger.Info("Booking confirmed by portal")
	return nil
}

// Screenshot captures the confirmation page for the audit trail.
func (c *Client) Screenshot(ctx context.Context, path string) error {
	return c.session.Screenshot(ctx, path)
}
