// Package duration derives elapsed-time values from the human-written date
// strings found on résumés. Arithmetic is month-granular: day-of-month
// information is ignored even when present, matching how people state tenure.
package duration

import (
	"sort"
	"strings"
	"time"

	"github.com/jmwangi/parsehire/internal/models"
)

// layouts lists the accepted date formats, most specific first.
var layouts = []string{
	"2006-01-02",
	"2006-01",
	"02 January 2006",
	"January 2006",
	"Jan 2006",
	"2006",
}

// ongoingMarkers are date strings that mean "still happening".
var ongoingMarkers = map[string]bool{
	"":          true,
	"present":   true,
	"ongoing":   true,
	"current":   true,
	"now":       true,
	"till date": true,
	"to date":   true,
}

// ParseDate parses a date written in any of the supported formats. The second
// return value is false when the string matches no format.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsOngoing reports whether the end-date string marks a period that has not
// finished yet.
func IsOngoing(end string) bool {
	return ongoingMarkers[strings.ToLower(strings.TrimSpace(end))]
}

// Between computes the duration from start to end. An ongoing or missing end
// date is bounded by now. An unparseable start date or an end date before the
// start yields a zero duration rather than failing the record.
func Between(start, end string, now time.Time) models.Duration {
	s, ok := ParseDate(start)
	if !ok {
		return models.Duration{}
	}
	e := now
	if !IsOngoing(end) {
		parsed, ok := ParseDate(end)
		if !ok {
			return models.Duration{}
		}
		e = parsed
	}
	return fromMonths(monthsBetween(s, e))
}

// Period is a date range contributed by one experience or education entry.
type Period struct {
	Start string
	End   string
}

// Total sums the given periods with overlapping ranges merged, so that two
// concurrent roles contribute the union of their spans rather than the sum.
// Entries whose start date cannot be parsed contribute nothing.
func Total(periods []Period, now time.Time) models.Duration {
	type span struct {
		start, end time.Time
	}

	spans := make([]span, 0, len(periods))
	for _, p := range periods {
		s, ok := ParseDate(p.Start)
		if !ok {
			continue
		}
		e := now
		if !IsOngoing(p.End) {
			parsed, ok := ParseDate(p.End)
			if !ok {
				continue
			}
			e = parsed
		}
		if e.Before(s) {
			continue
		}
		spans = append(spans, span{start: s, end: e})
	}

	if len(spans) == 0 {
		return models.Duration{}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	totalMonths := 0
	current := spans[0]
	for _, s := range spans[1:] {
		if !s.start.After(current.end) {
			if s.end.After(current.end) {
				current.end = s.end
			}
			continue
		}
		totalMonths += monthsBetween(current.start, current.end)
		current = s
	}
	totalMonths += monthsBetween(current.start, current.end)

	return fromMonths(totalMonths)
}

func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if months < 0 {
		return 0
	}
	return months
}

func fromMonths(months int) models.Duration {
	if months <= 0 {
		return models.Duration{}
	}
	return models.Duration{Years: months / 12, Months: months % 12}
}
