package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchd.org/core/app"
	"punchd.org/core/config"
	"punchd.org/core/db"
	"punchd.org/core/kekaclient"
	"punchd.org/core/location"
	"punchd.org/core/notify"
	"punchd.org/core/punch"
	"punchd.org/core/token"
	"punchd.org/core/user"
)

const testEmail = "user@example.com"

type noLogin struct{}

func (noLogin) Login(ctx context.Context, email, password string) (string, error) {
	return "renewed", nil
}

// vendorOK accepts every clock-in and reports an empty calendar.
func vendorOK() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/k/dashboard/api/mytime/attendance/remoteclockin", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/k/dashboard/api/dashboard/holidays", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value":[]}`))
	})
	mux.HandleFunc("/k/dashboard/api/me/publicprofile", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"emp-1"}`))
	})
	mux.HandleFunc("/k/dashboard/api/me/leave/calendarevents", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/k/dashboard/api/mytime/attendance/attendancerequests", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]kekaclient.AttendanceEntry{
			{Timestamp: "2026-08-26T09:00:00.000Z", OriginalPunchStatus: 0},
			{Timestamp: "2026-08-26T12:00:00.000Z", OriginalPunchStatus: 1},
		})
	})
	return mux
}

func newTestServer(t *testing.T, vendor http.Handler) (*Server, *db.DB) {
	t.Helper()

	d, err := db.Make(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	srv := httptest.NewServer(vendor)
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
	tokens := token.NewManager(d, noLogin{}, token.Config{
		Email:      testEmail,
		Password:   "hunter2",
		MaxAge:     156 * time.Hour,
		MaxRetries: 1,
	}, time.UTC, l)

	tracker := punch.NewTracker(d, u.Email, u.Timezone, l)
	calendar := punch.NewCalendar(d, client, u.Email, l)
	engine := punch.NewEngine(u, client, tracker, calendar, l)

	a := &app.App{
		Config:  &config.Config{},
		DB:      d,
		User:    u,
		Tokens:  tokens,
		Client:  client,
		Tracker: tracker,
		Engine:  engine,
		Notify:  notify.NewNtfy("", l),
		Logger:  l,
	}

	return &Server{app: a, l: l}, d
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestGetStateDefault(t *testing.T) {
	s, _ := newTestServer(t, vendorOK())

	rec := get(t, s, "/punch/get_state")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "No Punch", resp.PunchStatus)
	assert.Contains(t, resp.Message, "No Punch")
}

func TestPunchWithTypeForced(t *testing.T) {
	s, d := newTestServer(t, vendorOK())

	rec := get(t, s, "/punch/0?force=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Clocked In", rec.Body.String())

	state, err := db.GetState(d, testEmail)
	require.NoError(t, err)
	assert.Equal(t, 0, state.PunchStatus)

	rec = get(t, s, "/punch/get_state")
	var resp stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Clocked In", resp.PunchStatus)
}

func TestPunchRouteRejectsUnknownType(t *testing.T) {
	s, _ := newTestServer(t, vendorOK())

	rec := get(t, s, "/punch/2")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPunchDuplicateReturns400(t *testing.T) {
	s, d := newTestServer(t, vendorOK())

	require.NoError(t, db.SaveState(d, db.PunchState{
		Email:       testEmail,
		PunchStatus: 0,
		Timestamp:   time.Now().Add(-time.Hour),
	}))

	rec := get(t, s, "/punch/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Already Clocked In")
}

func TestTokenAge(t *testing.T) {
	s, d := newTestServer(t, vendorOK())

	require.NoError(t, db.SaveToken(d, db.Token{
		Email:     testEmail,
		Token:     "stored",
		Timestamp: time.Now().Add(-time.Hour),
	}))

	rec := get(t, s, "/token/age")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tokenAgeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testEmail, resp.Email)
	assert.InDelta(t, 3600, resp.TokenAge, 60)
	assert.Contains(t, resp.Message, "old")
}

func TestTokenRefresh(t *testing.T) {
	s, d := newTestServer(t, vendorOK())

	rec := get(t, s, "/token/refresh")
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := db.GetToken(d, testEmail)
	require.NoError(t, err)
	assert.Equal(t, "renewed", stored.Token)
}

func TestWorkTimeForDate(t *testing.T) {
	s, _ := newTestServer(t, vendorOK())

	rec := get(t, s, "/user/work_time_for_date?for_date=2026-08-26")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp workTimeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(3*3600), resp.TotalSeconds)
	assert.Equal(t, "3 hours", resp.FormattedTime)
	assert.Equal(t, "wednesday", resp.DayOfWeek)
}

func TestWorkTimeForDateRejectsBadDate(t *testing.T) {
	s, _ := newTestServer(t, vendorOK())

	rec := get(t, s, "/user/work_time_for_date?for_date=26-08-2026")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "for_date must be YYYY-MM-DD", rec.Body.String())
}

func TestUserRoute(t *testing.T) {
	s, _ := newTestServer(t, vendorOK())

	rec := get(t, s, "/user/")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testEmail, resp.Email)
	require.NotNil(t, resp.Location)
	assert.Equal(t, "Kolkata", resp.Location.City)
}
