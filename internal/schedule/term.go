package schedule

import (
	"regexp"
	"strings"
	"time"

	"vtechcal/internal/model"
)

const dateLayout = "2006-01-02"

// termRangeRe matches the semester date range printed in the timetable
// header, e.g. "2025-09-01 — 2026-01-25". Both em and en dashes occur in
// the wild.
var termRangeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*[—–]\s*(\d{4}-\d{2}-\d{2})`)

// Options configure one extraction run. The zero value derives the fallback
// term from the current year.
type Options struct {
	// DefaultTerm replaces the derived fallback window when the text has
	// no detectable date range.
	DefaultTerm model.Term

	// Now supplies the clock for the derived fallback. Nil means time.Now.
	Now func() time.Time
}

// DetectTerm locates the semester date range in the text and derives the
// term window from it.
//
// Start is rounded down to the Monday of the range's first week and Anchor
// keeps the literal first day. End is seasonal rather than literal: an
// autumn-term text (marker word or a September-or-later start) runs to
// January 26 of the following year, a spring-term text (marker word or a
// June-or-earlier start) to July 31 of the same year; only when neither
// season matches is the literal range end trusted.
//
// A text with no date range at all falls back to Options.DefaultTerm, or to
// a derived current-year window. This is degraded-input recovery, not an
// error.
func DetectTerm(text string, opts Options) model.Term {
	m := termRangeRe.FindStringSubmatch(text)
	if m == nil {
		return fallbackTerm(opts)
	}

	start, err1 := time.ParseInLocation(dateLayout, m[1], time.UTC)
	literalEnd, err2 := time.ParseInLocation(dateLayout, m[2], time.UTC)
	if err1 != nil || err2 != nil {
		return fallbackTerm(opts)
	}

	lower := strings.ToLower(text)
	end := literalEnd
	switch {
	case strings.Contains(lower, "autumn") || start.Month() >= time.September:
		end = utcDate(start.Year()+1, time.January, 26)
	case strings.Contains(lower, "spring") || start.Month() <= time.June:
		end = utcDate(start.Year(), time.July, 31)
	}

	return model.Term{
		Start:  mondayOf(start),
		End:    end,
		Anchor: start,
	}
}

func fallbackTerm(opts Options) model.Term {
	if !opts.DefaultTerm.IsZero() {
		return opts.DefaultTerm
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return FallbackTerm(now())
}

// FallbackTerm is the default term window for a given clock reading:
// September 1 of the current year through January 26 of the next, with
// instruction anchored at September 4.
func FallbackTerm(now time.Time) model.Term {
	y := now.Year()
	return model.Term{
		Start:  utcDate(y, time.September, 1),
		End:    utcDate(y+1, time.January, 26),
		Anchor: utcDate(y, time.September, 4),
	}
}

// mondayOf rounds a date down to the Monday of its week. Sunday counts as
// the end of the preceding week.
func mondayOf(d time.Time) time.Time {
	back := int(d.Weekday()) - 1
	if d.Weekday() == time.Sunday {
		back = 6
	}
	return d.AddDate(0, 0, -back)
}

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
