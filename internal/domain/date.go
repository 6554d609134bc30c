package domain

import (
	"fmt"
	"strings"
	"time"
)

// Formats accepted for string timestamps, most specific first. The first one
// matches what the store hands back for microsecond columns.
var dateLayouts = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseDateTime accepts a time.Time, a *time.Time or a string in one of
// dateLayouts. time.Parse rejects out of range fields, so "2019-02-30" fails.
func ParseDateTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, fmt.Errorf("ParseDateTime: zero time: %w", ErrInvalidDate)
		}
		return x, nil
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, fmt.Errorf("ParseDateTime: zero time: %w", ErrInvalidDate)
		}
		return *x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, fmt.Errorf("ParseDateTime: empty: %w", ErrInvalidDate)
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("ParseDateTime: %q: %w", s, ErrInvalidDate)
	default:
		return time.Time{}, fmt.Errorf("ParseDateTime: %T: %w", v, ErrInvalidDate)
	}
}
