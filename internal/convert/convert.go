// Package convert glues the extractor and the encoder into the one contract
// external callers use: convert(text) → ICS document.
package convert

import (
	"time"

	"vtechcal/internal/config"
	"vtechcal/internal/ics"
	appLog "vtechcal/internal/log"
	"vtechcal/internal/model"
	"vtechcal/internal/schedule"
)

// Convert turns one blob of extracted timetable text into an ICS document.
//
// The only surfaced failure is schedule.ErrNoEvents; every per-slot
// irregularity is absorbed inside the extractor. Conversions share no state,
// so concurrent calls need no coordination.
func Convert(text string, cfg *config.Config) (string, error) {
	events, err := schedule.Extract(text, schedule.Options{
		DefaultTerm: defaultTerm(cfg.DefaultTerm),
	})
	if err != nil {
		return "", err
	}

	return ics.Encode(events, ics.Options{
		Location:      resolveLocation(cfg.Timezone),
		CalendarName:  cfg.CalendarName,
		ProductID:     cfg.ProductID,
		LocationLabel: cfg.LocationLabel,
	})
}

// defaultTerm parses the configured fallback term. Missing or malformed
// dates yield a zero term, which makes the extractor derive its own
// current-year fallback.
func defaultTerm(tc config.TermConfig) model.Term {
	const layout = "2006-01-02"

	start, err1 := time.ParseInLocation(layout, tc.Start, time.UTC)
	end, err2 := time.ParseInLocation(layout, tc.End, time.UTC)
	anchor, err3 := time.ParseInLocation(layout, tc.Anchor, time.UTC)
	if err1 != nil || err2 != nil || err3 != nil {
		if tc.Start != "" || tc.End != "" || tc.Anchor != "" {
			appLog.Debug("ignoring malformed default_term config",
				"start", tc.Start, "end", tc.End, "anchor", tc.Anchor)
		}
		return model.Term{}
	}
	return model.Term{Start: start, End: end, Anchor: anchor}
}

func resolveLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
