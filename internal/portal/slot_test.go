// File: internal/portal/slot_test.go
package portal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseSlots(t *testing.T) {
	logger := zap.NewNop()

	t.Run("parses well formed titles", func(t *testing.T) {
		titles := []string{
			"9:00am Monday, September 1, 2025 - A1 - Available",
			"2:15pm Monday, September 1, 2025 - B2 - Available",
		}
		slots := ParseSlots(titles, 15, logger)
		require.Len(t, slots, 2)

		assert.Equal(t, "A1", slots[0].ResourceID)
		assert.Equal(t, time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC), slots[0].Start)
		assert.Equal(t, time.Date(2025, 9, 1, 9, 15, 0, 0, time.UTC), slots[0].End)
		assert.True(t, slots[0].Available)

		assert.Equal(t, "B2", slots[1].ResourceID)
		assert.Equal(t, 14, slots[1].Start.Hour())
		assert.Equal(t, 15, slots[1].Start.Minute())
	})

	t.Run("tolerates uppercase meridiem", func(t *testing.T) {
		slots := ParseSlots([]string{"9:00AM Monday, September 1, 2025 - A1 - Available"}, 15, logger)
		require.Len(t, slots, 1)
		assert.Equal(t, 9, slots[0].Start.Hour())
	})

	t.Run("skips malformed rows without aborting", func(t *testing.T) {
		titles := []string{
			"garbage",
			"9:00am Monday, September 1, 2025 - A1 - Available",
			"not a time - B2 - Available",
			"",
			"9:30am Monday, September 1, 2025 -  - Available", // empty resource
			"10:00am Monday, September 1, 2025 - C3 - Available",
		}
		slots := ParseSlots(titles, 30, logger)
		require.Len(t, slots, 2)
		assert.Equal(t, "A1", slots[0].ResourceID)
		assert.Equal(t, "C3", slots[1].ResourceID)
	})

	t.Run("drops taken slots", func(t *testing.T) {
		titles := []string{
			"9:00am Monday, September 1, 2025 - A1 - Unavailable",
			"9:00am Monday, September 1, 2025 - B2 - Available",
		}
		slots := ParseSlots(titles, 15, logger)
		require.Len(t, slots, 1)
		assert.Equal(t, "B2", slots[0].ResourceID)
	})

	t.Run("slot end honors grid granularity", func(t *testing.T) {
		slots := ParseSlots([]string{"9:00am Monday, September 1, 2025 - A1 - Available"}, 120, logger)
		require.Len(t, slots, 1)
		assert.Equal(t, 2*time.Hour, slots[0].End.Sub(slots[0].Start))
	})
}

func TestSlotTitleRoundTrip(t *testing.T) {
	// The title must match the page's text exactly, since it is the handle
	// used to click the calendar event.
	titles := []string{"9:00am Monday, September 1, 2025 - A1 - Available"}
	slots := ParseSlots(titles, 15, zap.NewNop())
	require.Len(t, slots, 1)
	assert.Equal(t, titles[0], slots[0].Title())
}

func TestSlotTitlePreservesPageCase(t *testing.T) {
	// An uppercase-meridiem row parses into a candidate; its title must
	// come back verbatim or the click-by-title lookup can never match it.
	titles := []string{"9:00AM Monday, September 1, 2025 - A1 - Available"}
	slots := ParseSlots(titles, 15, zap.NewNop())
	require.Len(t, slots, 1)
	assert.Equal(t, titles[0], slots[0].Title())
}

func TestSlotTitleReconstructedWhenNotScraped(t *testing.T) {
	slot := Slot{
		ResourceID: "A1",
		Start:      time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC),
		Available:  true,
	}
	assert.Equal(t, "9:00am Monday, September 1, 2025 - A1 - Available", slot.Title())
}
