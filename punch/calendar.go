package punch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"punchd.org/core/db"
	"punchd.org/core/kekaclient"
)

// Calendar decides whether a date is a non-working day. Holidays
// are cached per user and refreshed once a year; leave lookups
// are live and fail open.
type Calendar struct {
	db     *db.DB
	client *kekaclient.Client
	email  string
	l      *slog.Logger
}

func NewCalendar(d *db.DB, client *kekaclient.Client, email string, l *slog.Logger) *Calendar {
	return &Calendar{
		db:     d,
		client: client,
		email:  email,
		l:      l,
	}
}

// Ingest fetches the vendor holiday calendar and overwrites the
// cached set.
func (c *Calendar) Ingest(ctx context.Context) error {
	resp, err := c.client.Holidays(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return db.SaveHolidays(c.db, c.email, raw)
}

// holidaySet returns the cached holidays, refreshing when the
// cache is empty or on the first day of the year.
func (c *Calendar) holidaySet(ctx context.Context, date time.Time) ([]kekaclient.Holiday, error) {
	var resp kekaclient.HolidayResponse
	if raw, err := db.GetHolidays(c.db, c.email); err == nil {
		_ = json.Unmarshal(raw, &resp)
	}

	if len(resp.Value) == 0 || date.YearDay() == 1 {
		if err := c.Ingest(ctx); err != nil {
			return nil, err
		}

		raw, err := db.GetHolidays(c.db, c.email)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, err
		}
	}

	return resp.Value, nil
}

// NonWorkingDay reports whether date is a weekend or a holiday.
// When the holiday calendar cannot be fetched, the weekend check
// alone decides.
func (c *Calendar) NonWorkingDay(ctx context.Context, date time.Time) bool {
	weekday := date.Weekday()
	weekend := weekday == time.Saturday || weekday == time.Sunday

	holidays, err := c.holidaySet(ctx, date)
	if err != nil {
		c.l.Error("holiday lookup failed", "err", err)
		return weekend
	}

	day := date.Format(time.DateOnly)
	for _, h := range holidays {
		if d, err := h.Day(); err == nil && d.Format(time.DateOnly) == day {
			return true
		}
	}

	return weekend
}

// OnLeave reports whether the user has an approved leave entry
// spanning date. Lookup failures are treated as "not on leave";
// a leave-service outage must not block a legitimate punch.
func (c *Calendar) OnLeave(ctx context.Context, date time.Time) bool {
	profile, err := c.client.PublicProfile(ctx)
	if err != nil {
		c.l.Warn("profile lookup failed, assuming not on leave", "err", err)
		return false
	}

	events, err := c.client.LeaveEvents(ctx, date, date)
	if err != nil {
		c.l.Warn("leave lookup failed, assuming not on leave", "err", err)
		return false
	}

	for _, event := range events {
		if event.EmployeeID == profile.ID && event.Spans(date) {
			return true
		}
	}

	return false
}
