package schedule

import (
	"regexp"
	"strings"
)

// Lookahead bounds for the trailing-field heuristics. The timetable text has
// no field delimiters, so every scan is window-limited to keep one noisy
// slot from eating the next day's listings.
const (
	// tokenWindowSize is how many whitespace-separated tokens after a slot
	// match are inspected at all.
	tokenWindowSize = 20

	// defaultSubjectTokens is the subject length assumed when no token
	// closes a parenthesis inside the window.
	defaultSubjectTokens = 3

	// roomAbsorbMax is how many tokens after a room code may be absorbed
	// as additional room-code parts.
	roomAbsorbMax = 3

	// instructorScanMax bounds the secondary scan for a late title marker
	// or a bare "First Last" name.
	instructorScanMax = 8
)

var (
	// roomCodeRe matches auditorium codes like "P101" or "S4".
	roomCodeRe = regexp.MustCompile(`^[PS]\d+`)

	numericRe   = regexp.MustCompile(`^\d+$`)
	parenWordRe = regexp.MustCompile(`^\(\w+(-\w+)*\)$`)

	// capWordRe matches a single capitalized word, the shape of a bare
	// name token (covers non-ASCII letters in Lithuanian names).
	capWordRe = regexp.MustCompile(`^\p{Lu}\p{Ll}+$`)

	// timeStartRe marks the hour token of the next slot.
	timeStartRe = regexp.MustCompile(`^\d{2}:`)
)

var titleMarkers = []string{"Dr.", "Prof", "Assoc"}

var sessionKeywords = []string{"Laboratory", "Lectures", "Practical"}

// fieldSet holds the free-text fields recovered from the token window that
// follows one slot match.
type fieldSet struct {
	Subject     string
	Room        string
	Instructor  string
	SessionType string
}

// extractFields recovers subject, room, instructor and session type from the
// (window-truncated) token stream after a slot match. It is a pure function:
// unparseable fields come back empty, never as an error.
func extractFields(window []string) fieldSet {
	var fs fieldSet
	if len(window) == 0 {
		return fs
	}

	subjEnd := subjectEnd(window)
	fs.Subject = strings.Join(window[:subjEnd+1], " ")

	fs.Room, fs.Instructor = roomAndInstructor(window, subjEnd+1)
	fs.SessionType = sessionType(window, subjEnd+1)

	return fs
}

// subjectEnd returns the index of the last subject token: the first token
// closing a parenthesis, or a fixed short prefix when none does.
func subjectEnd(window []string) int {
	for i, tok := range window {
		if strings.Contains(tok, ")") {
			return i
		}
	}
	end := defaultSubjectTokens - 1
	if end >= len(window) {
		end = len(window) - 1
	}
	return end
}

// roomAndInstructor scans past the subject for a room code, greedily absorbs
// adjacent room-code parts, and picks up the instructor either directly at a
// title marker or via a bounded secondary scan.
func roomAndInstructor(window []string, start int) (room, instructor string) {
	for j := start; j < len(window); j++ {
		if !roomCodeRe.MatchString(window[j]) {
			continue
		}

		roomParts := []string{window[j]}
		k := j + 1
		for k < len(window) && k <= j+roomAbsorbMax {
			tok := window[k]
			if numericRe.MatchString(tok) || parenWordRe.MatchString(tok) {
				roomParts = append(roomParts, tok)
				k++
				continue
			}
			if containsTitle(tok) {
				instructor = untilSessionKeyword(window[k:])
			}
			break
		}

		if instructor == "" {
			limit := k + instructorScanMax
			if limit > len(window) {
				limit = len(window)
			}
			for m := k; m < limit; m++ {
				tok := window[m]
				if containsTitle(tok) {
					instructor = untilSessionKeyword(window[m:])
					break
				}
				if capWordRe.MatchString(tok) && m+1 < len(window) && capWordRe.MatchString(window[m+1]) {
					instructor = tok + " " + window[m+1]
					break
				}
			}
		}

		return strings.Join(roomParts, " "), instructor
	}
	return "", ""
}

// sessionType finds the first session-type keyword past the subject and
// collects tokens until the window ends or the next slot's "<n> HH:" pair
// begins.
func sessionType(window []string, start int) string {
	for j := start; j < len(window); j++ {
		if !containsSessionKeyword(window[j]) {
			continue
		}
		out := []string{window[j]}
		for m := j + 1; m < len(window); m++ {
			if numericRe.MatchString(window[m]) && m+1 < len(window) && timeStartRe.MatchString(window[m+1]) {
				break
			}
			out = append(out, window[m])
		}
		return strings.Join(out, " ")
	}
	return ""
}

// untilSessionKeyword joins tokens up to (not including) the first later
// token that starts a session-type phrase.
func untilSessionKeyword(toks []string) string {
	end := len(toks)
	for i := 1; i < len(toks); i++ {
		if startsSessionKeyword(toks[i]) {
			end = i
			break
		}
	}
	return strings.Join(toks[:end], " ")
}

func containsTitle(s string) bool {
	for _, t := range titleMarkers {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func containsSessionKeyword(s string) bool {
	for _, kw := range sessionKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func startsSessionKeyword(s string) bool {
	for _, kw := range sessionKeywords {
		if strings.HasPrefix(s, kw) {
			return true
		}
	}
	return false
}
