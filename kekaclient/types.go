package kekaclient

import (
	"time"

	"punchd.org/core/location"
)

// ClockInRequest is the remote clock-in payload.
//
// AttendanceLogSource and ManualClockinType are fixed markers the
// vendor uses to distinguish web punches from device punches. The
// timestamp carries millisecond precision and a literal trailing
// "Z" with no numeric offset; see punch.WireTimestamp.
type ClockInRequest struct {
	AttendanceLogSource int              `json:"attendanceLogSource"`
	LocationAddress     location.Address `json:"locationAddress"`
	ManualClockinType   int              `json:"manualClockinType"`
	Note                string           `json:"note"`
	OriginalPunchStatus int              `json:"originalPunchStatus"`
	Timestamp           string           `json:"timestamp"`
}

type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name,omitempty"`
}

type HolidayResponse struct {
	Value []Holiday `json:"value"`
}

// Day returns the calendar date of the holiday. Holiday dates
// arrive as ISO timestamps, with or without an offset, or as bare
// dates depending on the tenant.
func (h Holiday) Day() (time.Time, error) {
	var err error
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		time.DateOnly,
	} {
		var t time.Time
		if t, err = time.Parse(layout, h.Date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

type LeaveEvent struct {
	EmployeeID string `json:"employeeId"`
	FromDate   string `json:"fromDate"`
	ToDate     string `json:"toDate"`
	Status     int    `json:"status,omitempty"`
}

// Spans reports whether the leave entry covers the given date.
func (l LeaveEvent) Spans(date time.Time) bool {
	from, err := time.Parse(time.DateOnly, l.FromDate[:min(len(l.FromDate), 10)])
	if err != nil {
		return false
	}
	to, err := time.Parse(time.DateOnly, l.ToDate[:min(len(l.ToDate), 10)])
	if err != nil {
		return false
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(from) && !day.After(to)
}

type AttendanceEntry struct {
	Timestamp           string `json:"timestamp"`
	OriginalPunchStatus int    `json:"originalPunchStatus"`
}

type PublicProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	JobTitle    string `json:"jobTitle,omitempty"`
}
