package schedule

import (
	"testing"
	"time"

	"vtechcal/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDetectTermStartIsMonday(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantStart  time.Time
		wantAnchor time.Time
	}{
		{
			name:       "range starting on monday",
			text:       "Schedule 2025-09-01 — 2026-01-25",
			wantStart:  date(2025, time.September, 1),
			wantAnchor: date(2025, time.September, 1),
		},
		{
			name:       "range starting mid-week",
			text:       "Schedule 2025-09-04 — 2026-01-25",
			wantStart:  date(2025, time.September, 1),
			wantAnchor: date(2025, time.September, 4),
		},
		{
			name:       "range starting on sunday rounds back six days",
			text:       "Schedule 2025-09-07 — 2026-01-25",
			wantStart:  date(2025, time.September, 1),
			wantAnchor: date(2025, time.September, 7),
		},
		{
			name:       "en dash separator",
			text:       "Schedule 2025-09-03 – 2026-01-25",
			wantStart:  date(2025, time.September, 1),
			wantAnchor: date(2025, time.September, 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := DetectTerm(tt.text, Options{})
			if term.Start.Weekday() != time.Monday {
				t.Errorf("term start %v is %v, want Monday", term.Start, term.Start.Weekday())
			}
			if !term.Start.Equal(tt.wantStart) {
				t.Errorf("term start = %v, want %v", term.Start, tt.wantStart)
			}
			if !term.Anchor.Equal(tt.wantAnchor) {
				t.Errorf("term anchor = %v, want %v", term.Anchor, tt.wantAnchor)
			}
		})
	}
}

func TestDetectTermSeasonalEnd(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantEnd time.Time
	}{
		{
			name:    "autumn marker overrides literal end",
			text:    "Autumn semester 2024-09-02 — 2024-12-20",
			wantEnd: date(2025, time.January, 26),
		},
		{
			name:    "september start counts as autumn without marker",
			text:    "Semester 2025-09-01 — 2026-01-10",
			wantEnd: date(2026, time.January, 26),
		},
		{
			name:    "spring marker overrides a mid-year start",
			text:    "Spring semester 2025-07-07 — 2025-08-15",
			wantEnd: date(2025, time.July, 31),
		},
		{
			name:    "june-or-earlier start counts as spring",
			text:    "Semester 2025-02-03 — 2025-06-15",
			wantEnd: date(2025, time.July, 31),
		},
		{
			name:    "neither season trusts the literal end",
			text:    "Semester 2025-07-07 — 2025-08-15",
			wantEnd: date(2025, time.August, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := DetectTerm(tt.text, Options{})
			if !term.End.Equal(tt.wantEnd) {
				t.Errorf("term end = %v, want %v", term.End, tt.wantEnd)
			}
		})
	}
}

func TestDetectTermFallback(t *testing.T) {
	now := func() time.Time { return date(2025, time.October, 15) }

	t.Run("derived from clock", func(t *testing.T) {
		term := DetectTerm("no date range in here", Options{Now: now})
		if !term.Start.Equal(date(2025, time.September, 1)) {
			t.Errorf("fallback start = %v", term.Start)
		}
		if !term.End.Equal(date(2026, time.January, 26)) {
			t.Errorf("fallback end = %v", term.End)
		}
		if !term.Anchor.Equal(date(2025, time.September, 4)) {
			t.Errorf("fallback anchor = %v", term.Anchor)
		}
	})

	t.Run("configured default wins", func(t *testing.T) {
		want := model.Term{
			Start:  date(2026, time.February, 2),
			End:    date(2026, time.July, 31),
			Anchor: date(2026, time.February, 4),
		}
		term := DetectTerm("no date range in here", Options{DefaultTerm: want, Now: now})
		if term != want {
			t.Errorf("term = %+v, want %+v", term, want)
		}
	})

	t.Run("range in text beats configured default", func(t *testing.T) {
		def := model.Term{
			Start:  date(2026, time.February, 2),
			End:    date(2026, time.July, 31),
			Anchor: date(2026, time.February, 4),
		}
		term := DetectTerm("Autumn 2025-09-01 — 2026-01-25", Options{DefaultTerm: def})
		if !term.Anchor.Equal(date(2025, time.September, 1)) {
			t.Errorf("anchor = %v, want detected range start", term.Anchor)
		}
	})
}
