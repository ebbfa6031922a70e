package stopwatch

import (
	"fmt"
	"time"
)

// Layout selects how elapsed time is shown on the 4 digits.
type Layout int

const (
	// LayoutCentiseconds shows SS:hh and wraps after 100 seconds.
	LayoutCentiseconds Layout = iota
	// LayoutMinutes shows MM:SS and wraps after 100 minutes. The colon blinks
	// at 1 Hz while running.
	LayoutMinutes
)

// ParseLayout parses "centiseconds" or "minutes".
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "centiseconds", "cs":
		return LayoutCentiseconds, nil
	case "minutes", "min":
		return LayoutMinutes, nil
	}
	return 0, fmt.Errorf("stopwatch: unknown layout %q", s)
}

func (l Layout) String() string {
	switch l {
	case LayoutCentiseconds:
		return "centiseconds"
	case LayoutMinutes:
		return "minutes"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Format returns the 4 digits for elapsed.
func (l Layout) Format(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	if l == LayoutMinutes {
		s := int64(elapsed/time.Second) % 6000
		return fmt.Sprintf("%02d%02d", s/60, s%60)
	}
	cs := int64(elapsed/(10*time.Millisecond)) % 10000
	return fmt.Sprintf("%02d%02d", cs/100, cs%100)
}

// Colon reports whether the colon is lit for elapsed.
func (l Layout) Colon(elapsed time.Duration, running bool) bool {
	if l != LayoutMinutes || !running {
		return true
	}
	return elapsed%time.Second < 500*time.Millisecond
}
