package schedule

import (
	"errors"
	"regexp"
	"strings"

	appLog "vtechcal/internal/log"
	"vtechcal/internal/model"
)

// ErrNoEvents is returned when a text yields no schedule records at all.
// It is the single fatal outcome of extraction; everything short of it
// degrades by skipping.
var ErrNoEvents = errors.New("no schedule events found")

// markerRe matches a weekday heading such as "Monday 2025-09-01". The date's
// year is deliberately unanchored so the scan works for any term.
var markerRe = regexp.MustCompile(`(Monday|Tuesday|Wednesday|Thursday|Friday)\s+\d{4}-\d{2}-\d{2}`)

// slotRe matches one scheduled time block inside a day chunk: lecture index,
// time range, recurrence-week code and an optional subgroup code.
var slotRe = regexp.MustCompile(`\d+\s+\d{2}:\d{2}-\d{2}:\d{2}\s+\d+(?:\s+\d+)?`)

var timeRangeRe = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}$`)

var weekdayNumbers = map[string]int{
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
	"Friday":    5,
}

type dayMarker struct {
	weekday int
	offset  int
}

// Extract recovers schedule records from one blob of extracted timetable
// text. The text is segmented at weekday markers into per-day chunks, each
// chunk is scanned for slot patterns, and each slot's trailing fields are
// recovered heuristically.
//
// Individual slots or chunks that cannot be parsed are skipped; Extract only
// fails (with ErrNoEvents) when nothing at all was recovered.
func Extract(text string, opts Options) ([]model.ScheduleEvent, error) {
	term := DetectTerm(text, opts)
	markers := findDayMarkers(text)

	events := make([]model.ScheduleEvent, 0)
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].offset
		}
		events = append(events, extractChunk(text[m.offset:end], m.weekday, term)...)
	}

	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	appLog.Info("schedule extracted",
		"events", len(events),
		"days", len(markers),
		"term_start", term.Start.Format(dateLayout),
		"term_end", term.End.Format(dateLayout),
	)
	return events, nil
}

// findDayMarkers locates every weekday heading in offset order. The marker
// offsets double as chunk boundaries.
func findDayMarkers(text string) []dayMarker {
	locs := markerRe.FindAllStringSubmatchIndex(text, -1)
	markers := make([]dayMarker, 0, len(locs))
	for _, loc := range locs {
		name := text[loc[2]:loc[3]]
		markers = append(markers, dayMarker{
			weekday: weekdayNumbers[name],
			offset:  loc[0],
		})
	}
	return markers
}

// extractChunk scans one day's text for slot patterns and assembles a record
// per surviving slot.
func extractChunk(chunk string, weekday int, term model.Term) []model.ScheduleEvent {
	out := make([]model.ScheduleEvent, 0)

	for _, loc := range slotRe.FindAllStringIndex(chunk, -1) {
		parts := strings.Fields(chunk[loc[0]:loc[1]])
		if len(parts) < 3 {
			continue
		}
		// parts[0] is the lecture index; unused.
		timeRange := parts[1]
		week := parts[2]
		subgroup := "0"
		if len(parts) >= 4 {
			subgroup = parts[3]
		}

		window := strings.Fields(chunk[loc[1]:])
		if len(window) > tokenWindowSize {
			window = window[:tokenWindowSize]
		}
		fields := extractFields(window)

		if fields.Subject == "" || !timeRangeRe.MatchString(timeRange) {
			appLog.Debug("slot skipped", "weekday", weekday, "time", timeRange)
			continue
		}

		out = append(out, model.ScheduleEvent{
			Subject:        fields.Subject,
			Time:           timeRange,
			Weekday:        weekday,
			Room:           fields.Room,
			Instructor:     fields.Instructor,
			SessionType:    fields.SessionType,
			RecurrenceWeek: week,
			Subgroup:       subgroup,
			Term:           term,
		})
	}

	return out
}
