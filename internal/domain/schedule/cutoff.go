package schedule

import (
	"time"

	"saleflow/internal/core/apperror"
)

// CutoffSpec is a daily order cutoff time. Orders planned at or before
// the cutoff stay on the same day; later ones roll to the next day.
// An empty Timezone means the cutoff is expressed in UTC.
type CutoffSpec struct {
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Timezone string `json:"timezone,omitempty"`
}

// Validate checks the spec for contradictions. A bad timezone or an
// out-of-range time is a configuration error, never silently defaulted.
func (c CutoffSpec) Validate() error {
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return apperror.NewConfiguration("cutoff time out of range").
			WithDetail("hour", c.Hour).
			WithDetail("minute", c.Minute)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return apperror.NewConfiguration("cutoff timezone does not resolve").
				WithDetail("timezone", c.Timezone).
				WithCause(err)
		}
	}
	return nil
}

// Apply returns date adjusted to the cutoff time.
//
// When date is at or before the day's cutoff, the result is the cutoff
// instant of the same day; otherwise it is the cutoff instant of the
// next day. keepSameDay suppresses the next-day roll (used when the day
// was fixed by an earlier stage or a committed promise and only the
// time-of-day must be normalized).
func (c CutoffSpec) Apply(date time.Time, keepSameDay bool) (time.Time, error) {
	date = date.UTC()

	loc := time.UTC
	if c.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(c.Timezone)
		if err != nil {
			return time.Time{}, apperror.NewConfiguration("cutoff timezone does not resolve").
				WithDetail("timezone", c.Timezone).
				WithCause(err)
		}
	}

	y, m, d := date.In(loc).Date()
	cutoffAt := time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)

	if date.After(cutoffAt) && !keepSameDay {
		// The roll happens in the cutoff's own calendar so the result
		// keeps the configured wall-clock time across DST transitions.
		cutoffAt = time.Date(y, m, d+1, c.Hour, c.Minute, 0, 0, loc)
	}
	return cutoffAt.UTC(), nil
}
