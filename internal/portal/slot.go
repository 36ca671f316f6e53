// File: internal/portal/slot.go
package portal

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// slotTimeLayout matches the portal's calendar event titles, e.g.
// "9:00am Monday, September 1, 2025". The portal renders am/pm in
// either case depending on the view, so parsing tries both.
const (
	slotTimeLayoutLower = "3:04pm Monday, January 2, 2006"
	slotTimeLayoutUpper = "3:04PM Monday, January 2, 2006"
)

// availableMarker is the status suffix the portal puts on bookable events.
const availableMarker = "Available"

// Slot is one bookable (resource, start, end) unit, derived fresh from
// the live page on every scan. Slots carry no identity beyond the scan
// that produced them.
type Slot struct {
	ResourceID string    `json:"resource_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Available  bool      `json:"available"`

	// pageTitle is the event title exactly as scraped. Clicking matches
	// against it verbatim, so it is never normalized; the portal renders
	// the meridiem in either case depending on the view.
	pageTitle string
}

// Title returns the calendar event title for this slot, the only stable
// handle the page offers for clicking it. Scraped slots carry the page's
// own title; it is reconstructed only for slots built in code.
func (s Slot) Title() string {
	if s.pageTitle != "" {
		return s.pageTitle
	}
	return fmt.Sprintf("%s - %s - %s",
		s.Start.Format(slotTimeLayoutLower), s.ResourceID, availableMarker)
}

func (s Slot) String() string {
	return fmt.Sprintf("%s @ %s", s.ResourceID, s.Start.Format("2006-01-02 15:04"))
}

// ParseSlots turns raw calendar event titles into Slot records. Titles
// look like "9:00am Monday, September 1, 2025 - A1 - Available". The
// grid only exposes start times; End is derived from the configured
// grid granularity. Malformed or non-available rows are skipped, never
// fatal: one bad row must not abort the whole scan.
func ParseSlots(titles []string, slotMinutes int, logger *zap.Logger) []Slot {
	slots := make([]Slot, 0, len(titles))
	for _, title := range titles {
		slot, err := parseSlotTitle(title, slotMinutes)
		if err != nil {
			logger.Debug("Skipping unparsable slot row", zap.String("title", title), zap.Error(err))
			continue
		}
		if !slot.Available {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

func parseSlotTitle(title string, slotMinutes int) (Slot, error) {
	parts := strings.Split(title, " - ")
	if len(parts) < 3 {
		return Slot{}, fmt.Errorf("title %q does not have time, resource and status fields", title)
	}

	timePart := strings.TrimSpace(parts[0])
	resource := strings.TrimSpace(parts[1])
	status := strings.TrimSpace(parts[len(parts)-1])
	if resource == "" {
		return Slot{}, fmt.Errorf("title %q has an empty resource field", title)
	}

	start, err := time.Parse(slotTimeLayoutLower, timePart)
	if err != nil {
		start, err = time.Parse(slotTimeLayoutUpper, timePart)
	}
	if err != nil {
		return Slot{}, fmt.Errorf("title %q has an unparsable time: %w", title, err)
	}

	return Slot{
		ResourceID: resource,
		Start:      start,
		End:        start.Add(time.Duration(slotMinutes) * time.Minute),
		Available:  strings.EqualFold(status, availableMarker),
		pageTitle:  title,
	}, nil
}
