package rndc

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned for dates that are neither DD/MM/YYYY nor
// YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// ErrInvalidTime is returned for clock times that are not HH:MM.
var ErrInvalidTime = errors.New("invalid time")

const dateLayout = "02/01/2006"

// FormatDate renders t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate accepts DD/MM/YYYY (day and month may have one digit) or
// YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		if t, err := time.Parse("2/1/2006", s); err == nil {
			return t, nil
		}
	} else if strings.Contains(s, "-") {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// NormalizeDate returns s rendered as DD/MM/YYYY.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return FormatDate(t), nil
}

// NormalizeTime returns s rendered as zero-padded HH:MM.
func NormalizeTime(s string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Format("15:04"), nil
}

// AddHoursWrapped adds hours to an HH:MM clock time modulo 24. The date is
// never rolled forward: 23:30 + 2h is 01:30.
func AddHoursWrapped(hhmm string, hours int) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	h := ((t.Hour()+hours)%24 + 24) % 24
	return fmt.Sprintf("%02d:%02d", h, t.Minute()), nil
}
