// Package datetime provides month-label arithmetic for plan schedules.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/premium-forecast/pkg/constants"
)

const (
	// DateTimeLayout is the format of plan month labels.
	DateTimeLayout = constants.DateTimeLayout
)

// ParseMonth parses a "2006-01" month label.
func ParseMonth(label string) (time.Time, error) {
	t, err := time.Parse(DateTimeLayout, label)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", label, err)
	}
	return t, nil
}

// CurrentMonth returns the month label for now.
func CurrentMonth(now time.Time) string {
	return now.Format(DateTimeLayout)
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date string, months int) (string, error) {
	t, err := ParseMonth(date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(DateTimeLayout), nil
}

// MonthLabel returns the calendar label of plan month n (1-based) for a
// schedule starting at start. Month 1 is start itself.
func MonthLabel(start string, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("month number must be at least 1, got %d", n)
	}
	return OffsetDate(start, n-1)
}
