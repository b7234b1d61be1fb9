package ics

import (
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"strings"

	"vtechcal/internal/model"
)

// uidDomain is the fixed namespace appended to every generated UID.
const uidDomain = "vtechcal"

// UID derives a stable identifier from a record's full field set. The same
// record always hashes to the same UID across runs; collision resistance
// across unrelated records is not a goal.
func UID(ev model.ScheduleEvent) string {
	fields := []string{
		ev.Subject,
		ev.Time,
		strconv.Itoa(ev.Weekday),
		ev.Room,
		ev.Instructor,
		ev.SessionType,
		ev.RecurrenceWeek,
		ev.Subgroup,
		ev.Term.Start.Format("2006-01-02"),
		ev.Term.End.Format("2006-01-02"),
		ev.Term.Anchor.Format("2006-01-02"),
	}

	h := fnv.New64a()
	io.WriteString(h, strings.Join(fields, "\x1f"))
	return fmt.Sprintf("vtech-%d@%s", h.Sum64(), uidDomain)
}
