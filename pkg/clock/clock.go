// Package clock handles the widget's wall-clock time strings. Slot times are
// compared and rendered as wall-clock values in the activity's timezone,
// never converted to absolute instants, so output is stable regardless of the
// viewer's local timezone.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock24 parses "HH:MM" into minutes since midnight.
func ParseClock24(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// ParseClock12 parses a human 12-hour string like "10:00 AM" or "2:15pm"
// into minutes since midnight.
func ParseClock12(s string) (int, error) {
	s = strings.TrimSpace(strings.ToUpper(s))

	var meridiem string
	switch {
	case strings.HasSuffix(s, "AM"):
		meridiem = "AM"
	case strings.HasSuffix(s, "PM"):
		meridiem = "PM"
	default:
		return 0, fmt.Errorf("invalid time %q: missing AM/PM", s)
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, meridiem))

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected H:MM AM/PM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 1 || h > 12 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	if h == 12 {
		h = 0
	}
	if meridiem == "PM" {
		h += 12
	}
	return h*60 + m, nil
}

// FormatClock12 renders minutes since midnight as "10:00 AM".
func FormatClock12(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	h := minutes / 60
	m := minutes % 60

	meridiem := "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, m, meridiem)
}

// FormatClock24 renders minutes since midnight as "HH:MM".
func FormatClock24(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
