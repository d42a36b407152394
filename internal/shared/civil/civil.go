// Package civil handles calendar dates. A date is a time.Time at midnight UTC
// whose year, month and day carry the meaning.
package civil

import (
	"context"
	"time"

	"go-fleetpay/internal/shared/contextutil"
)

const Layout = "2006-01-02"

func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date as observed in loc.
func Today(ctx context.Context, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Date(contextutil.Now(ctx).In(loc))
}

func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func ParsePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := Parse(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func Format(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(Layout)
	return &s
}
