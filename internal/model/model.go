package model

import "time"

// Term is one academic semester's date span. Start is always the Monday of
// the term's first week; Anchor is the literal first day of instruction,
// which may fall later in that week. End bounds recurrence expiry.
type Term struct {
	Start  time.Time
	End    time.Time
	Anchor time.Time
}

// IsZero reports whether the term carries no dates at all.
func (t Term) IsZero() bool {
	return t.Start.IsZero() && t.End.IsZero() && t.Anchor.IsZero()
}

// ScheduleEvent is one schedule record recovered from timetable text.
// Produced by internal/schedule, consumed read-only by internal/ics.
type ScheduleEvent struct {
	// Subject is the raw subject label; parenthetical annotations are
	// stripped only at encode time.
	Subject string

	// Time is the literal "HH:MM-HH:MM" slot.
	Time string

	// Weekday is ISO-style: Monday=1 .. Friday=5.
	Weekday int

	// Room may be empty, and may carry trailing instructor tokens when
	// extraction misfired; the encoder truncates those.
	Room string

	Instructor string

	// SessionType is free text, e.g. "Lectures" or "Laboratory work".
	SessionType string

	// RecurrenceWeek is "0" for every week, "1"/"2" for the two halves
	// of a biweekly pair.
	RecurrenceWeek string

	// Subgroup is "0" when the slot has no subgroup restriction.
	Subgroup string

	// Term is shared by every record of one conversion.
	Term Term
}
