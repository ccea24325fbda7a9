// Package recurrence expands weekly recurrence templates into concrete
// calendar occurrences. It is the in-process realization of the store-side
// expand_recurring_events contract: every occurrence carries a concrete
// date, and templates with no occurrence inside the window produce nothing.
package recurrence

import (
	"fmt"
	"time"
)

// Pattern describes a weekly recurrence: the weekdays it fires on
// (0=Sunday .. 6=Saturday), the date of the template event, and an optional
// end date after which no occurrences are produced.
type Pattern struct {
	Days    []int
	Start   string
	EndDate string
}

// Expand returns every occurrence date within [windowStart, windowEnd],
// inclusive, as YYYY-MM-DD strings in ascending order. Occurrences never
// precede the template date and never exceed the pattern end date.
func Expand(p Pattern, windowStart, windowEnd string) ([]string, error) {
	if len(p.Days) == 0 {
		return nil, nil
	}

	start, err := parseDay(windowStart)
	if err != nil {
		return nil, fmt.Errorf("invalid window start %q: %w", windowStart, err)
	}
	end, err := parseDay(windowEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid window end %q: %w", windowEnd, err)
	}
	templateStart, err := parseDay(p.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern start %q: %w", p.Start, err)
	}

	if templateStart.After(start) {
		start = templateStart
	}
	if p.EndDate != "" {
		patternEnd, err := parseDay(p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern end %q: %w", p.EndDate, err)
		}
		if patternEnd.Before(end) {
			end = patternEnd
		}
	}

	weekdays := make(map[time.Weekday]bool, len(p.Days))
	for _, d := range p.Days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid weekday index %d", d)
		}
		weekdays[time.Weekday(d)] = true
	}

	var out []string
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if weekdays[day.Weekday()] {
			out = append(out, day.Format(time.DateOnly))
		}
	}
	return out, nil
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
