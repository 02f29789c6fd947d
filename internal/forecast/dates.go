package forecast

import (
	"strings"
	"time"
)

// DateStrategy names which parsing pass produced a column's timestamps.
type DateStrategy int

const (
	DateStrategyStrictYear DateStrategy = iota
	DateStrategyLenient
)

func (s DateStrategy) String() string {
	if s == DateStrategyStrictYear {
		return "strict_year"
	}
	return "lenient"
}

// strictYearLayout accepts a bare four digit year only.
const strictYearLayout = "2006"

// lenientLayouts are tried in order for every value once strict parsing has
// been abandoned for the column.
var lenientLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	"2006/01",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan-2006",
	"Jan 2006",
	"January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006",
}

// ParsedDates holds one timestamp per input value; Valid[i] is false where
// the value could not be parsed.
type ParsedDates struct {
	Strategy DateStrategy
	Times    []time.Time
	Valid    []bool
}

// ParseDates applies the two-step rule: parse every value as a strict year;
// if any single value fails, discard that result and reparse the whole
// column leniently, leaving unparseable entries invalid.
func ParseDates(values []string) ParsedDates {
	if out, ok := parseStrictYears(values); ok {
		return out
	}
	return parseLenient(values)
}

func parseStrictYears(values []string) (ParsedDates, bool) {
	out := ParsedDates{
		Strategy: DateStrategyStrictYear,
		Times:    make([]time.Time, len(values)),
		Valid:    make([]bool, len(values)),
	}
	for i, v := range values {
		t, err := time.Parse(strictYearLayout, strings.TrimSpace(v))
		if err != nil {
			return ParsedDates{}, false
		}
		out.Times[i] = t
		out.Valid[i] = true
	}
	return out, true
}

func parseLenient(values []string) ParsedDates {
	out := ParsedDates{
		Strategy: DateStrategyLenient,
		Times:    make([]time.Time, len(values)),
		Valid:    make([]bool, len(values)),
	}
	for i, v := range values {
		if t, ok := parseLenientValue(strings.TrimSpace(v)); ok {
			out.Times[i] = t
			out.Valid[i] = true
		}
	}
	return out
}

func parseLenientValue(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
