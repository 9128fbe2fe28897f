// Package dateutil parses and formats the date representations used by the
// ILS backends.
package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// DisplayLayout is the normalized date form the drivers return.
const DisplayLayout = "2006-01-02"

// ParseAxiell parses a date from an Axiell web service. New backend versions
// answer with an ISO date prefix; old versions answer with a verbose form
// like "Wed Feb 14 00:00:00 Europe/Helsinki 2018".
func ParseAxiell(s string) (time.Time, error) {
	if len(s) >= 10 && isISOPrefix(s) {
		return time.Parse(DisplayLayout, s[:10])
	}
	return parseVerbose(s)
}

func isISOPrefix(s string) bool {
	for i, c := range []byte(s[:10]) {
		if i == 4 || i == 7 {
			if c != '-' {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseVerbose(s string) (time.Time, error) {
	fields := strings.Fields(s)
	if len(fields) != 6 {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	loc, err := time.LoadLocation(fields[4])
	if err != nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("Jan 2 15:04:05 2006",
		strings.Join([]string{fields[1], fields[2], fields[3], fields[5]}, " "), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return t, nil
}

// FormatAxiell normalizes an Axiell date string to DisplayLayout, returning
// the input unchanged when it cannot be parsed.
func FormatAxiell(s string) string {
	if s == "" {
		return ""
	}
	t, err := ParseAxiell(s)
	if err != nil {
		return s
	}
	return t.Format(DisplayLayout)
}

// ParseOData parses a Mikromarc OData timestamp, with or without a zone
// designator.
func ParseOData(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(DisplayLayout, s)
}

// FormatOData normalizes an OData timestamp to DisplayLayout, returning the
// input unchanged when it cannot be parsed.
func FormatOData(s string) string {
	if s == "" {
		return ""
	}
	t, err := ParseOData(s)
	if err != nil {
		return s
	}
	return t.Format(DisplayLayout)
}

// EndOfDay returns the same calendar day at 23:59:59 in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// DueStatus classifies a due date: "overdue" once the end of the due day
// has passed, "due" within the final 24 hours, empty otherwise.
func DueStatus(due, now time.Time) string {
	end := EndOfDay(due)
	switch {
	case now.After(end):
		return "overdue"
	case end.Sub(now) < 24*time.Hour:
		return "due"
	}
	return ""
}
