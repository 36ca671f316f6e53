// File: internal/booking/selection.go
package booking

import (
	"errors"
	"time"

	"github.com/example/studyroom-bot/internal/config"
	"github.com/example/studyroom-bot/internal/portal"
)

// ErrNoSlotAvailable means no scanned slot survived filtering; the agent
// performs no transaction in that case.
var ErrNoSlotAvailable = errors.New("no bookable slot within the configured window")

// Window is the allowed [Start, End) booking window as time-of-day bounds.
type Window struct {
	Start config.Clock
	End   config.Clock
}

// Contains reports whether the slot's [start, end) interval lies entirely
// inside the window. A slot straddling a boundary is rejected, not
// clipped. The end bound is computed as start plus duration so a slot
// ending exactly at midnight doesn't wrap to zero.
func (w Window) Contains(s portal.Slot) bool {
	start := config.ClockOf(s.Start)
	end := start + config.Clock(s.End.Sub(s.Start)/time.Minute)
	return start >= w.Start && end <= w.End
}

// SelectSlot picks the slot to book. Candidates are first narrowed to the
// configured window; among those, slots matching the preferred resource
// id win outright when any exist, otherwise every in-window slot in the
// category is fair game. The earliest start wins, ties broken by the
// lexicographically smallest resource id, so selection is deterministic
// and reproducible for a given scan.
func SelectSlot(slots []portal.Slot, preferredID string, w Window) (portal.Slot, error) {
	var candidates []portal.Slot
	for _, s := range slots {
		if s.Available && w.Contains(s) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return portal.Slot{}, ErrNoSlotAvailable
	}

	if preferredID != "" {
		var preferred []portal.Slot
		for _, s := range candidates {
			if s.ResourceID == preferredID {
				preferred = append(preferred, s)
			}
		}
		if len(preferred) > 0 {
			candidates = preferred
		}
	}

	best := candidates[0]
	for _, s := range candidates[1:] {
		if s.Start.Before(best.Start) ||
			(s.Start.Equal(best.Start) && s.ResourceID < best.ResourceID) {
			best = s
		}
	}
	return best, nil
}
