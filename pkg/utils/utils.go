package utils

import (
	"fmt"
	"time"
)

// GenerateReceiptNumber builds a date-stamped receipt number of the form
// RCP-YYYYMMDD-NNNNNN where the suffix is the last six digits of the
// millisecond timestamp.
func GenerateReceiptNumber(t time.Time) string {
	millis := fmt.Sprintf("%d", t.UnixMilli())
	suffix := millis
	if len(millis) > 6 {
		suffix = millis[len(millis)-6:]
	}
	return fmt.Sprintf("RCP-%s-%s", t.Format("20060102"), suffix)
}

// DateOnly strips the time-of-day component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsPastDue reports whether, comparing dates only, now is strictly after due.
func IsPastDue(now, due time.Time) bool {
	return DateOnly(now).After(DateOnly(due))
}

// DaysOverdue returns how many whole days past due the date is, or 0.
func DaysOverdue(now, due time.Time) int {
	diff := DateOnly(now).Sub(DateOnly(due))
	days := int(diff.Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
