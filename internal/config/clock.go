// File: internal/config/clock.go
package config

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time expressed as minutes since midnight. The
// booking window is a pure time-of-day constraint; the date comes from
// the scanned slots themselves.
type Clock int

// ParseClock parses a zero-padded 24-hour string such as "0800". Anything
// that is not exactly four digits with a valid hour and minute is rejected.
func ParseClock(s string) (Clock, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("clock value %q must be a 4-digit 24-hour string (e.g. \"0800\")", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("clock value %q must be a 4-digit 24-hour string (e.g. \"0800\")", s)
		}
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[2]-'0')*10 + int(s[3]-'0')
	if hour > 23 {
		return 0, fmt.Errorf("clock value %q: hour must be between 00 and 23", s)
	}
	if minute > 59 {
		return 0, fmt.Errorf("clock value %q: minute must be between 00 and 59", s)
	}
	return Clock(hour*60 + minute), nil
}

// ClockOf projects a timestamp onto its minutes-since-midnight value.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// String renders the clock back in "HHMM" form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d%02d", int(c)/60, int(c)%60)
}
