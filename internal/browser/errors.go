// File: internal/browser/errors.go
package browser

import "errors"

var (
	// ErrElementNotFound is returned when an element lookup does not
	// resolve within its bounded wait.
	ErrElementNotFound = errors.New("element not found within timeout")
	// ErrNavigationTimeout is returned when a page navigation does not
	// complete within its bounded wait.
	ErrNavigationTimeout = errors.New("navigation did not complete within timeout")
)
