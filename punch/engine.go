package punch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"punchd.org/core/kekaclient"
	"punchd.org/core/user"
)

// Success is the body returned for explicit no-op punches.
const Success = "Success"

// ErrNoLocation means the user's address could not be resolved.
// Punches always carry a location payload, so this is fatal.
var ErrNoLocation = errors.New("user location is not resolved")

// Engine orchestrates punch decisions: reads the last state,
// consults the calendar gate, and issues the vendor write.
type Engine struct {
	user     *user.User
	client   *kekaclient.Client
	tracker  *Tracker
	calendar *Calendar
	l        *slog.Logger

	now func() time.Time
}

func NewEngine(u *user.User, client *kekaclient.Client, tracker *Tracker, calendar *Calendar, l *slog.Logger) *Engine {
	return &Engine{
		user:     u,
		client:   client,
		tracker:  tracker,
		calendar: calendar,
		l:        l,
		now:      u.Now,
	}
}

// WireTimestamp renders the punch timestamp the way the vendor
// expects: the local wall clock with millisecond precision and a
// literal trailing "Z", no numeric offset.
func WireTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000") + "Z"
}

// Punch decides whether a punch of the requested type should be
// executed and, if so, submits it. Business rejections come back
// as a Result with a 400 status; only configuration and
// infrastructure failures return an error. Force bypasses the
// duplicate, holiday, and leave checks but still requires a
// resolved location and a token.
func (e *Engine) Punch(ctx context.Context, requested Type, force bool) (Result, error) {
	if requested == None {
		return Result{Status: http.StatusOK, Message: Success}, nil
	}

	if e.user.Location == nil {
		return Result{}, ErrNoLocation
	}

	last, lastAt := e.tracker.Current()
	if requested == Unspecified {
		requested = last.Opposite()
	}

	now := e.now()

	if !force {
		if requested == last {
			return Result{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("Already %s, %s", requested.Message(), humanize.RelTime(lastAt, now, "ago", "from now")),
			}, nil
		}
		if e.calendar.NonWorkingDay(ctx, now) {
			return Result{
				Status:  http.StatusBadRequest,
				Message: "It's a holiday or weekend. Not punching",
			}, nil
		}
		if e.calendar.OnLeave(ctx, now) {
			return Result{
				Status:  http.StatusBadRequest,
				Message: "You are on leave today. Not punching",
			}, nil
		}
	}

	err := e.client.RemoteClockIn(ctx, kekaclient.ClockInRequest{
		AttendanceLogSource: 1,
		LocationAddress:     *e.user.Location,
		ManualClockinType:   3,
		Note:                "",
		OriginalPunchStatus: int(requested),
		Timestamp:           WireTimestamp(now),
	})

	var statusErr *kekaclient.StatusError
	if errors.As(err, &statusErr) {
		// vendor rejection is surfaced verbatim; no state change
		e.l.Error("vendor rejected punch", "status", statusErr.Code, "body", statusErr.Body)
		return Result{Status: statusErr.Code, Message: statusErr.Body}, nil
	}
	if err != nil {
		return Result{}, err
	}

	if err := e.tracker.Record(requested); err != nil {
		return Result{}, err
	}

	e.l.Info(requested.Message())
	return Result{Status: http.StatusOK, Message: requested.Message()}, nil
}
