// File: internal/portal/errors.go
package portal

import "errors"

var (
	// ErrAuthentication means login did not reach the booking page
	// within the navigation timeout.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNavigation means the listing page did not show its expected
	// marker content.
	ErrNavigation = errors.New("unexpected page content")
	// ErrTransaction means the portal rejected the confirmation step.
	ErrTransaction = errors.New("booking confirmation rejected by portal")
)
