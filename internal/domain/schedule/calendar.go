// Package schedule computes promised delivery dates and procurement
// planning dates for sale order lines. All datetimes are naive UTC.
package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WorkingCalendar projects datetimes across working days.
// Implemented by WeeklyCalendar; consumers treat it as opaque.
type WorkingCalendar interface {
	// PlanDays advances from by n working days according to attendance
	// rules. With computeLeaves, recorded leave days are skipped as well.
	// The returned datetime is the end of the n-th working day.
	PlanDays(n int, from time.Time, computeLeaves bool) time.Time

	// IsWorkingDay reports whether the day of t has attendance and is
	// not covered by a leave.
	IsWorkingDay(t time.Time) bool
}

// TimeOfDay is a wall-clock time within a day.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Minutes returns the time as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// At combines a calendar day with this time of day (UTC).
func (t TimeOfDay) At(day time.Time) time.Time {
	y, m, d := day.UTC().Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, time.UTC)
}

// Attendance is a working period on a weekday.
type Attendance struct {
	Weekday time.Weekday `json:"weekday"`
	From    TimeOfDay    `json:"from"`
	To      TimeOfDay    `json:"to"`
}

// Leave is an inclusive range of non-working calendar days (holidays,
// closures). Only the date parts of From/To are significant.
type Leave struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (l Leave) covers(day time.Time) bool {
	d := dateOf(day)
	return !d.Before(dateOf(l.From)) && !d.After(dateOf(l.To))
}

// WeeklyCalendar is an attendance-based working calendar with optional
// leave periods.
type WeeklyCalendar struct {
	name        string
	attendances map[time.Weekday][]Attendance
	leaves      []Leave
}

// NewWeeklyCalendar creates an empty calendar.
func NewWeeklyCalendar(name string) *WeeklyCalendar {
	return &WeeklyCalendar{
		name:        name,
		attendances: make(map[time.Weekday][]Attendance),
	}
}

// StandardWeek creates a Mon-Fri calendar with the given working hours.
func StandardWeek(name string, from, to TimeOfDay) *WeeklyCalendar {
	cal := NewWeeklyCalendar(name)
	for wd := time.Monday; wd <= time.Friday; wd++ {
		cal.AddAttendance(Attendance{Weekday: wd, From: from, To: to})
	}
	return cal
}

// Name returns the calendar name.
func (c *WeeklyCalendar) Name() string { return c.name }

// AddAttendance registers a working period.
func (c *WeeklyCalendar) AddAttendance(att Attendance) {
	c.attendances[att.Weekday] = append(c.attendances[att.Weekday], att)
}

// AddLeave registers a leave period.
func (c *WeeklyCalendar) AddLeave(leave Leave) {
	c.leaves = append(c.leaves, leave)
}

// IsWorkingDay implements WorkingCalendar.
func (c *WeeklyCalendar) IsWorkingDay(t time.Time) bool {
	if len(c.attendances[t.UTC().Weekday()]) == 0 {
		return false
	}
	return !c.onLeave(t)
}

func (c *WeeklyCalendar) onLeave(day time.Time) bool {
	for _, l := range c.leaves {
		if l.covers(day) {
			return true
		}
	}
	return false
}

// dayEnd returns the latest attendance end on the given day.
func (c *WeeklyCalendar) dayEnd(day time.Time) (TimeOfDay, bool) {
	atts := c.attendances[day.UTC().Weekday()]
	if len(atts) == 0 {
		return TimeOfDay{}, false
	}
	end := atts[0].To
	for _, att := range atts[1:] {
		if end.Before(att.To) {
			end = att.To
		}
	}
	return end, true
}

// PlanDays implements WorkingCalendar.
//
// A day counts toward n when it has attendance, is not a leave (if
// computeLeaves), and its attendance end is strictly after the starting
// instant on the first day. The result is the end of the n-th counted
// day, which makes consecutive projections with split workloads equal a
// single projection of the summed workload.
func (c *WeeklyCalendar) PlanDays(n int, from time.Time, computeLeaves bool) time.Time {
	if n <= 0 {
		return from
	}

	from = from.UTC()
	day := dateOf(from)
	counted := 0

	// Bounded scan: an empty or fully-on-leave calendar must not loop forever.
	limit := n*7 + 366
	for i := 0; i < limit; i++ {
		if end, ok := c.dayEnd(day); ok {
			skip := computeLeaves && c.onLeave(day)
			endAt := end.At(day)
			if !skip && endAt.After(from) {
				counted++
				if counted == n {
					return endAt
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return from
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekSpec is the serializable form of a WeeklyCalendar, stored as JSONB
// on the warehouse catalog.
type WeekSpec struct {
	Name        string       `json:"name,omitempty"`
	Attendances []Attendance `json:"attendances"`
	Leaves      []Leave      `json:"leaves,omitempty"`
}

// Calendar materializes the spec into a usable calendar.
func (s *WeekSpec) Calendar() *WeeklyCalendar {
	if s == nil || len(s.Attendances) == 0 {
		return nil
	}
	cal := NewWeeklyCalendar(s.Name)
	for _, att := range s.Attendances {
		cal.AddAttendance(att)
	}
	for _, l := range s.Leaves {
		cal.AddLeave(l)
	}
	return cal
}

// Value implements driver.Valuer for PostgreSQL JSONB.
func (s WeekSpec) Value() (driver.Value, error) {
	if len(s.Attendances) == 0 && len(s.Leaves) == 0 {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for PostgreSQL JSONB.
func (s *WeekSpec) Scan(src any) error {
	if src == nil {
		*s = WeekSpec{}
		return nil
	}
	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return fmt.Errorf("unsupported type for WeekSpec: %T", src)
	}
	if len(source) == 0 {
		*s = WeekSpec{}
		return nil
	}
	return json.Unmarshal(source, s)
}
