package scheduler

import "time"

// DayPolicy makes the daily-quota day boundary an explicit, testable
// parameter instead of an implicit call to system local time. The day
// starts at midnight in the configured location.
type DayPolicy struct {
	Location *time.Location
}

// NewDayPolicy creates a DayPolicy for the given location. A nil location
// falls back to the system's local time zone.
func NewDayPolicy(loc *time.Location) DayPolicy {
	if loc == nil {
		loc = time.Local
	}
	return DayPolicy{Location: loc}
}

// StartOfDay returns midnight of the calendar day containing now, in the
// policy's location.
func (p DayPolicy) StartOfDay(now time.Time) time.Time {
	local := now.In(p.Location)
	year, month, day := local.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, p.Location)
}
