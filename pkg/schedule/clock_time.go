// Package schedule provides wall-clock arithmetic on "HH:MM" strings.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// EarlierTime returns the time mins minutes before cur, wrapping to the
// previous day when crossing midnight. The result is formatted "H:MM".
func EarlierTime(cur string, mins int) (string, error) {
	total, err := parseClock(cur)
	if err != nil {
		return "", err
	}
	return formatClock(total - mins), nil
}

// LaterTime returns the time mins minutes after cur, wrapping to the next
// day when crossing midnight. The result is formatted "H:MM".
func LaterTime(cur string, mins int) (string, error) {
	total, err := parseClock(cur)
	if err != nil {
		return "", err
	}
	return formatClock(total + mins), nil
}

func parseClock(value string) (int, error) {
	hourPart, minPart, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("schedule: time %q must be HH:MM", value)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("schedule: hour in %q: %w", value, err)
	}
	minute, err := strconv.Atoi(minPart)
	if err != nil {
		return 0, fmt.Errorf("schedule: minute in %q: %w", value, err)
	}
	return hour*60 + minute, nil
}

func formatClock(total int) string {
	// Go's % keeps the dividend's sign.
	total = ((total % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
