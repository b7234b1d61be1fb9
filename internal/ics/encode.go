package ics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "vtechcal/internal/log"
	"vtechcal/internal/model"
)

// Options control calendar identity and rendering. Records themselves carry
// their term; everything else the calendar needs arrives here.
type Options struct {
	// Location localizes event start/end instants and names the calendar's
	// X-WR-TIMEZONE. Nil means time.Local.
	Location *time.Location

	CalendarName  string
	ProductID     string
	LocationLabel string

	// Stamp is the DTSTAMP applied to every event. The zero value means
	// time.Now; tests pin it for byte-identical output.
	Stamp time.Time
}

// Encode serializes schedule records into a single ICS document with one
// weekly (or biweekly) recurring VEVENT per record.
//
// Encode assumes well-formed records as produced by internal/schedule; it
// does not re-validate extractor invariants.
func Encode(events []model.ScheduleEvent, opts Options) (string, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetVersion("2.0")
	cal.SetProductId(opts.ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(opts.CalendarName)
	cal.SetXWRTimezone(loc.String())

	for _, ev := range events {
		startHour, startMin, endHour, endMin, err := parseTimeRange(ev.Time)
		if err != nil {
			return "", fmt.Errorf("encode %q: %w", ev.Subject, err)
		}

		first := firstOccurrence(ev)
		startDt := time.Date(first.Year(), first.Month(), first.Day(), startHour, startMin, 0, 0, loc)
		endDt := time.Date(first.Year(), first.Month(), first.Day(), endHour, endMin, 0, 0, loc)

		ve := cal.AddEvent(UID(ev))
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(startDt)
		ve.SetEndAt(endDt)
		ve.SetSummary(summary(ev))
		if d := description(ev); d != "" {
			ve.SetDescription(d)
		}
		ve.SetLocation(opts.LocationLabel)
		ve.AddRrule(recurrenceRule(ev, loc))
	}

	appLog.Debug("calendar encoded", "events", len(events), "timezone", loc.String())
	return cal.Serialize(), nil
}

// firstOccurrence projects a record onto its first real calendar date:
// weekday-aligned from the Monday term start, pushed a week when the term's
// instruction begins later that week, and one more week for the second half
// of a biweekly pair.
func firstOccurrence(ev model.ScheduleEvent) time.Time {
	daysAhead := (ev.Weekday - int(ev.Term.Start.Weekday())) % 7
	if daysAhead < 0 {
		daysAhead += 7
	}
	first := ev.Term.Start.AddDate(0, 0, daysAhead)
	if first.Before(ev.Term.Anchor) {
		first = first.AddDate(0, 0, 7)
	}
	if ev.RecurrenceWeek == "2" {
		first = first.AddDate(0, 0, 7)
	}
	return first
}

// recurrenceRule builds the RRULE value: weekly, with INTERVAL=2 for either
// half of a biweekly pair, expiring at end-of-day on the term end.
func recurrenceRule(ev model.ScheduleEvent, loc *time.Location) string {
	end := ev.Term.End
	until := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), loc)

	opt := rrule.ROption{Freq: rrule.WEEKLY, Until: until}
	if ev.RecurrenceWeek == "1" || ev.RecurrenceWeek == "2" {
		opt.Interval = 2
	}
	return opt.String()
}

func parseTimeRange(s string) (startHour, startMin, endHour, endMin int, err error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("malformed time range %q", s)
	}
	startHour, startMin, err = parseHourMinute(start)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	endHour, endMin, err = parseHourMinute(end)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return startHour, startMin, endHour, endMin, nil
}

func parseHourMinute(s string) (int, int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed time %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed hour %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed minute %q", s)
	}
	return hour, minute, nil
}

var (
	parenGroupRe    = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	colonDigitsRe   = regexp.MustCompile(`:\s*\d+`)
	trailingColonRe = regexp.MustCompile(`:\s*$`)
)

// typeAbbrev maps session-type phrases to short labels. Matching is by
// substring containment, first entry wins, so order matters.
var typeAbbrev = []struct {
	phrase string
	abbr   string
}{
	{"Laboratory work", "Lab"},
	{"laboratory works", "Lab"},
	{"Practical exercises", "Tutorial"},
	{"practical work", "Tutorial"},
	{"Lectures", "Lecture"},
}

// summary derives the event title: "<short type>: <course name>" with
// parenthetical annotations stripped from the subject, then trailing
// ": <digits>" and bare-colon artifacts removed.
func summary(ev model.ScheduleEvent) string {
	courseName := strings.TrimSpace(parenGroupRe.ReplaceAllString(ev.Subject, ""))

	shortType := ev.SessionType
	for _, m := range typeAbbrev {
		if strings.Contains(ev.SessionType, m.phrase) {
			shortType = m.abbr
			break
		}
	}

	var s string
	switch {
	case shortType != "" && courseName != "":
		s = shortType + ": " + courseName
	case courseName != "":
		s = courseName
	default:
		s = ev.Subject
	}

	s = colonDigitsRe.ReplaceAllString(s, ":")
	s = trailingColonRe.ReplaceAllString(s, "")
	return s
}

// description lists the present-only detail lines: instructor, room,
// biweekly week tag and subgroup tag.
func description(ev model.ScheduleEvent) string {
	parts := make([]string, 0, 4)
	if ev.Instructor != "" {
		parts = append(parts, ev.Instructor)
	}
	if ev.Room != "" {
		parts = append(parts, "Room: "+cleanRoom(ev.Room))
	}
	if ev.RecurrenceWeek != "" && ev.RecurrenceWeek != "0" {
		parts = append(parts, "Week "+ev.RecurrenceWeek)
	}
	if ev.Subgroup != "" && ev.Subgroup != "0" {
		parts = append(parts, "Subgroup "+ev.Subgroup)
	}
	return strings.Join(parts, "\n")
}

var titleMarkers = []string{"Dr.", "Prof", "Assoc"}

// cleanRoom truncates a room field at the first academic-title token. The
// extractor's greedy room absorption occasionally drags instructor tokens
// into the room; those belong to the instructor line, not here.
func cleanRoom(room string) string {
	if !containsTitle(room) {
		return room
	}
	fields := strings.Fields(room)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if containsTitle(f) {
			break
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return room
	}
	return strings.Join(kept, " ")
}

func containsTitle(s string) bool {
	for _, t := range titleMarkers {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
