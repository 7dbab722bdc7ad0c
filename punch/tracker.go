package punch

import (
	"log/slog"
	"time"

	"punchd.org/core/db"
)

// Tracker owns the last-known punch state for the user. State
// only changes through vendor-confirmed writes.
type Tracker struct {
	db    *db.DB
	email string
	tz    *time.Location
	l     *slog.Logger

	now func() time.Time
}

func NewTracker(d *db.DB, email string, tz *time.Location, l *slog.Logger) *Tracker {
	return &Tracker{
		db:    d,
		email: email,
		tz:    tz,
		l:     l,
		now:   time.Now,
	}
}

// Current returns the last punch state and its timestamp,
// defaulting to (None, now) when no record exists. Never fails.
func (t *Tracker) Current() (Type, time.Time) {
	rec, err := db.GetState(t.db, t.email)
	if err != nil {
		return None, t.now().In(t.tz)
	}
	return Type(rec.PunchStatus), rec.Timestamp
}

// Record persists a vendor-confirmed punch.
func (t *Tracker) Record(p Type) error {
	err := db.SaveState(t.db, db.PunchState{
		Email:       t.email,
		PunchStatus: int(p),
		Timestamp:   t.now().In(t.tz),
	})
	if err != nil {
		return err
	}

	t.l.Info("saved state", "punch_status", p.Message())
	return nil
}
