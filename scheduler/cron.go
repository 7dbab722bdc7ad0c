package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule is a parsed 5-field cron expression
// (minute hour day-of-month month day-of-week).
type Schedule struct {
	minute, hour, dom, month, dow field
}

// field is a bitset over 0-63, enough for every cron field.
type field uint64

func (f field) has(v int) bool { return f&(1<<uint(v)) != 0 }
func (f *field) set(v int)     { *f |= 1 << uint(v) }

// ParseCron parses a 5-field cron expression supporting "*",
// values, lists, ranges, and steps.
func ParseCron(expr string) (Schedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return Schedule{}, fmt.Errorf("cron %q: expected 5 fields, got %d", expr, len(parts))
	}

	var s Schedule
	for i, spec := range []struct {
		dst      *field
		min, max int
		name     string
	}{
		{&s.minute, 0, 59, "minute"},
		{&s.hour, 0, 23, "hour"},
		{&s.dom, 1, 31, "day-of-month"},
		{&s.month, 1, 12, "month"},
		{&s.dow, 0, 6, "day-of-week"},
	} {
		f, err := parseField(parts[i], spec.min, spec.max)
		if err != nil {
			return Schedule{}, fmt.Errorf("cron %q: %s field: %w", expr, spec.name, err)
		}
		*spec.dst = f
	}

	return s, nil
}

// Next returns the earliest instant strictly after t matching the
// schedule, computed in t's location. The search is bounded to
// four years so impossible schedules terminate.
func (s Schedule) Next(t time.Time) (time.Time, error) {
	loc := t.Location()
	t = t.Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(4, 0, 0)

	for t.Before(limit) {
		if !s.month.has(int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
			continue
		}
		// wildcard fields have every bit set, so checking both
		// day constraints covers standard cron semantics
		if !s.dom.has(t.Day()) || !s.dow.has(int(t.Weekday())) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
			continue
		}
		if !s.hour.has(t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
			continue
		}
		if !s.minute.has(t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("cron: no matching time within 4 years of %s", t.Format(time.RFC3339))
}

func parseField(spec string, min, max int) (field, error) {
	var result field
	for _, term := range strings.Split(spec, ",") {
		f, err := parseTerm(term, min, max)
		if err != nil {
			return 0, err
		}
		result |= f
	}
	if result == 0 {
		return 0, fmt.Errorf("%q produces an empty set", spec)
	}
	return result, nil
}

// parseTerm handles *, */N, V, V-V, and V-V/N.
func parseTerm(term string, min, max int) (field, error) {
	expr, stepStr, hasStep := strings.Cut(term, "/")
	step := 1
	if hasStep {
		parsed, err := strconv.Atoi(stepStr)
		if err != nil || parsed <= 0 {
			return 0, fmt.Errorf("invalid step %q", stepStr)
		}
		step = parsed
	}

	lo, hi := min, max
	if expr != "*" {
		loStr, hiStr, isRange := strings.Cut(expr, "-")
		var err error
		lo, err = strconv.Atoi(loStr)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q", loStr)
		}
		hi = lo
		if isRange {
			hi, err = strconv.Atoi(hiStr)
			if err != nil {
				return 0, fmt.Errorf("invalid value %q", hiStr)
			}
		}
	}

	if lo > hi || lo < min || hi > max {
		return 0, fmt.Errorf("%q out of range [%d-%d]", term, min, max)
	}

	var result field
	for v := lo; v <= hi; v += step {
		result.set(v)
	}
	return result, nil
}
