package types

import (
	"time"

	ierr "github.com/meterflow/meterflow/internal/errors"
)

// DateFormat is the wire format for all dates exchanged with the platform
// and the spreadsheet inputs.
const DateFormat = "2006-01-02"

// RevenueWindowDays is the length of the revenue recognition window that a
// billing run opens. The end date is calendar-exact (start + 30 days), not
// month-aware.
const RevenueWindowDays = 30

// RevenueEndDate returns the end of the revenue window opened at start.
func RevenueEndDate(start time.Time) time.Time {
	return start.AddDate(0, 0, RevenueWindowDays)
}

// ParseRunDate parses a billing run date in YYYY-MM-DD form.
func ParseRunDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("Billing run date must be in YYYY-MM-DD format, got %q", s).
			Mark(ierr.ErrValidation)
	}
	return t, nil
}

// FormatDate renders t in the wire date format.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}
