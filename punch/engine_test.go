package punch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchd.org/core/db"
	"punchd.org/core/kekaclient"
	"punchd.org/core/location"
	"punchd.org/core/user"
)

const testEmail = "user@example.com"

var (
	// fixed reference instants, chosen for their weekday
	wednesday = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	saturday  = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
)

// vendorStub fakes the dashboard API endpoints the punch engine
// touches.
type vendorStub struct {
	mu sync.Mutex

	clockIns      int
	clockInStatus int
	clockInBody   string

	holidayCalls int
	holidays     []kekaclient.Holiday

	profileID   string
	leaveStatus int
	leave       []kekaclient.LeaveEvent

	entries []kekaclient.AttendanceEntry
}

func (v *vendorStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/k/dashboard/api/mytime/attendance/remoteclockin", func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		v.clockIns++
		status, body := v.clockInStatus, v.clockInBody
		v.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	})

	mux.HandleFunc("/k/dashboard/api/dashboard/holidays", func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		v.holidayCalls++
		holidays := v.holidays
		v.mu.Unlock()

		json.NewEncoder(w).Encode(kekaclient.HolidayResponse{Value: holidays})
	})

	mux.HandleFunc("/k/dashboard/api/me/publicprofile", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(kekaclient.PublicProfile{ID: v.profileID})
	})

	mux.HandleFunc("/k/dashboard/api/me/leave/calendarevents", func(w http.ResponseWriter, r *http.Request) {
		if v.leaveStatus != 0 {
			w.WriteHeader(v.leaveStatus)
			return
		}
		json.NewEncoder(w).Encode(v.leave)
	})

	mux.HandleFunc("/k/dashboard/api/mytime/attendance/attendancerequests", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(v.entries)
	})

	return mux
}

func newTestEngine(t *testing.T, stub *vendorStub, now time.Time) (*Engine, *db.DB) {
	t.Helper()

	d, err := db.Make(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	client, err := kekaclient.NewWithBase(srv.URL, kekaclient.StaticToken("token"))
	require.NoError(t, err)

	u := &user.User{
		Email: testEmail,
		Location: &location.Address{
			Latitude:    "22.4809532",
			Longitude:   "88.4112943",
			CountryCode: "IN",
			City:        "Kolkata",
		},
		Timezone: time.UTC,
	}

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := NewTracker(d, u.Email, u.Timezone, l)
	calendar := NewCalendar(d, client, u.Email, l)

	e := NewEngine(u, client, tracker, calendar, l)
	e.now = func() time.Time { return now }
	return e, d
}

func saveState(t *testing.T, d *db.DB, status Type, at time.Time) {
	t.Helper()
	require.NoError(t, db.SaveState(d, db.PunchState{
		Email:       testEmail,
		PunchStatus: int(status),
		Timestamp:   at,
	}))
}

func TestPunchOppositeSucceeds(t *testing.T) {
	stub := &vendorStub{}
	e, d := newTestEngine(t, stub, wednesday)
	saveState(t, d, Out, wednesday.Add(-14*time.Hour))

	result, err := e.Punch(context.Background(), In, false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, "Clocked In", result.Message)
	assert.Equal(t, 1, stub.clockIns)

	state, err := db.GetState(d, testEmail)
	require.NoError(t, err)
	assert.Equal(t, int(In), state.PunchStatus)
}

func TestPunchUnspecifiedDefaultsToClockIn(t *testing.T) {
	stub := &vendorStub{}
	e, _ := newTestEngine(t, stub, wednesday)

	// no prior state: the derived punch is a clock-in
	result, err := e.Punch(context.Background(), Unspecified, false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, "Clocked In", result.Message)
}

func TestPunchDuplicateRejected(t *testing.T) {
	stub := &vendorStub{}
	e, d := newTestEngine(t, stub, wednesday)
	saveState(t, d, In, wednesday.Add(-3*time.Hour))

	result, err := e.Punch(context.Background(), In, false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Contains(t, result.Message, "Already Clocked In")
	assert.Contains(t, result.Message, "ago")
	assert.Zero(t, stub.clockIns)
}

func TestPunchWeekendRejected(t *testing.T) {
	stub := &vendorStub{}
	e, d := newTestEngine(t, stub, saturday)
	saveState(t, d, Out, saturday.Add(-14*time.Hour))

	result, err := e.Punch(context.Background(), In, false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Equal(t, "It's a holiday or weekend. Not punching", result.Message)
	assert.Zero(t, stub.clockIns)
}

func TestPunchHolidayRejected(t *testing.T) {
	stub := &vendorStub{
		holidays: []kekaclient.Holiday{
			{Date: "2026-08-26T00:00:00", Name: "Test Holiday"},
		},
	}
	e, d := newTestEngine(t, stub, wednesday)
	saveState(t, d, Out, wednesday.Add(-14*time.Hour))

	result, err := e.Punch(context.Background(), In, false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Equal(t, "It's a holiday or weekend. Not punching", result.Message)
	assert.Zero(t, stub.clockIns)
}

func TestPunchLeaveRejected(t *testing.T) {
	stub := &vendorStub{
		profileID: "emp-1",
		leave: []kekaclient.LeaveEvent{
			{EmployeeID: "emp-1", FromDate: "2026-08-25", ToDate: "2026-08-27"},
		},
	}
	e, d := newTestEngine(t, stub, wednesday)
	saveState(t, d, Out, wednesday.Add(-14*time.Hour))

	result, err := e.Punch(context.Background(), In, false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Equal(t, "You are on leave today. Not punching", result.Message)
	assert.Zero(t, stub.clockIns)
}

func TestPunchForceBypassesGates(t *testing.T) {
	stub := &vendorStub{}
	e, d := newTestEngine(t, stub, saturday)
	saveState(t, d, In, saturday.Add(-3*time.Hour))

	// duplicate punch on a weekend, forced through anyway
	result, err := e.Punch(context.Background(), In, true)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, "Clocked In", result.Message)
	assert.Equal(t, 1, stub.clockIns)
}

func TestPunchVendorErrorKeepsState(t *testing.T) {
	stub := &vendorStub{
		clockInStatus: http.StatusInternalServerError,
		clockInBody:   "something went wrong",
	}
	e, d := newTestEngine(t, stub, wednesday)
	saveState(t, d, Out, wednesday.Add(-14*time.Hour))

	result, err := e.Punch(context.Background(), In, false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, result.Status)
	assert.Equal(t, "something went wrong", result.Message)

	state, err := db.GetState(d, testEmail)
	require.NoError(t, err)
	assert.Equal(t, int(Out), state.PunchStatus)
}

func TestPunchNoneIsNoOp(t *testing.T) {
	stub := &vendorStub{}
	e, _ := newTestEngine(t, stub, wednesday)

	result, err := e.Punch(context.Background(), None, false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, Success, result.Message)
	assert.Zero(t, stub.clockIns)
}

func TestPunchRequiresLocation(t *testing.T) {
	stub := &vendorStub{}
	e, _ := newTestEngine(t, stub, wednesday)
	e.user.Location = nil

	_, err := e.Punch(context.Background(), In, false)
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestWireTimestamp(t *testing.T) {
	at := time.Date(2026, 8, 26, 10, 5, 6, 123_000_000, time.UTC)
	assert.Equal(t, "2026-08-26T10:05:06.123Z", WireTimestamp(at))

	// the literal Z is kept even for zoned wall-clock time
	ist := time.FixedZone("IST", 5*3600+1800)
	at = time.Date(2026, 8, 26, 15, 35, 6, 0, ist)
	assert.Equal(t, "2026-08-26T15:35:06.000Z", WireTimestamp(at))
}
