package punch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// WorkTime sums the time worked on a date by pairing consecutive
// clock-in/clock-out entries. An unmatched trailing clock-in is
// closed at now (for today) or at end of day (for past dates).
func (e *Engine) WorkTime(ctx context.Context, date time.Time) (time.Duration, error) {
	entries, err := e.client.AttendanceRequests(ctx, date)
	if err != nil {
		return 0, err
	}

	type record struct {
		at     time.Time
		status Type
	}

	var records []record
	for _, entry := range entries {
		at, err := parseEntryTime(entry.Timestamp, e.user.Timezone)
		if err != nil {
			e.l.Warn("skipping attendance entry with bad timestamp",
				"timestamp", entry.Timestamp, "err", err)
			continue
		}
		records = append(records, record{at: at, status: Type(entry.OriginalPunchStatus)})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].at.Before(records[j].at)
	})

	var total time.Duration
	var openIn *time.Time
	for i := range records {
		switch records[i].status {
		case In:
			if openIn == nil {
				openIn = &records[i].at
			}
		case Out:
			if openIn != nil {
				total += records[i].at.Sub(*openIn)
				openIn = nil
			}
		}
	}

	if openIn != nil {
		end := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, e.user.Timezone)
		if now := e.now(); now.Before(end) {
			end = now
		}
		total += end.Sub(*openIn)
	}

	return total, nil
}

// parseEntryTime reads vendor attendance timestamps. They carry a
// trailing "Z" but are local wall-clock time (the same quirk as
// the punch write), so they are parsed in the user's timezone.
func parseEntryTime(s string, tz *time.Location) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range []string{
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, s, tz); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatDuration renders a duration the way punch responses do:
// largest units first, minutes suppressed past a day, seconds
// past an hour.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d days", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 && days == 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}
	if seconds > 0 && days == 0 && hours == 0 {
		parts = append(parts, fmt.Sprintf("%d seconds", seconds))
	}
	if parts == nil {
		return "0 seconds"
	}

	return strings.Join(parts, ", ")
}
