package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"punchd.org/core/db"
	"punchd.org/core/location"
	"punchd.org/core/punch"
)

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

func parseForce(r *http.Request) bool {
	force := r.URL.Query().Get("force")
	return force == "true" || force == "1"
}

// Punch punches with the opposite of the last recorded state.
func (s *Server) Punch(w http.ResponseWriter, r *http.Request) {
	result, err := s.app.Engine.Punch(r.Context(), punch.Unspecified, parseForce(r))
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeError(w, result.Message, result.Status)
}

// PunchWithType punches with an explicit type: 0 for clock-in, 1
// for clock-out.
func (s *Server) PunchWithType(w http.ResponseWriter, r *http.Request) {
	punchType, err := punch.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.app.Engine.Punch(r.Context(), punchType, parseForce(r))
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeError(w, result.Message, result.Status)
}

type stateResponse struct {
	PunchStatus string `json:"punch_status"`
	Timestamp   string `json:"timestamp"`
	Message     string `json:"message"`
}

func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	status, timestamp := s.app.Tracker.Current()

	writeJSON(w, stateResponse{
		PunchStatus: status.Message(),
		Timestamp:   timestamp.Format(db.TimeFormat),
		Message: fmt.Sprintf("%s %s", status.Message(),
			humanize.RelTime(timestamp, s.app.User.Now(), "ago", "from now")),
	})
}

type tokenAgeResponse struct {
	Email     string  `json:"email"`
	TokenAge  float64 `json:"token_age"`
	Timestamp string  `json:"timestamp"`
	Message   string  `json:"message"`
}

func (s *Server) tokenAge(w http.ResponseWriter, r *http.Request) {
	age, issued := s.app.Tokens.Age(r.Context())

	writeJSON(w, tokenAgeResponse{
		Email:     s.app.User.Email,
		TokenAge:  age.Seconds(),
		Timestamp: issued.Format(db.TimeFormat),
		Message: fmt.Sprintf("Token is %s",
			humanize.RelTime(issued, s.app.User.Now(), "old", "from now")),
	})
}

func (s *Server) TokenAge(w http.ResponseWriter, r *http.Request) {
	s.tokenAge(w, r)
}

// TokenRefresh forces a renewal through the credential provider.
// This blocks for the duration of the browser login.
func (s *Server) TokenRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.app.Tokens.Refresh(r.Context()); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.tokenAge(w, r)
}

type workTimeResponse struct {
	TotalSeconds  float64 `json:"total_seconds"`
	FormattedTime string  `json:"formatted_time"`
	DayOfWeek     string  `json:"day_of_week"`
}

func (s *Server) WorkTimeForDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.ParseInLocation(time.DateOnly,
		r.URL.Query().Get("for_date"), s.app.User.Timezone)
	if err != nil {
		writeError(w, "for_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	total, err := s.app.Engine.WorkTime(r.Context(), date)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, workTimeResponse{
		TotalSeconds:  total.Seconds(),
		FormattedTime: punch.FormatDuration(total),
		DayOfWeek:     strings.ToLower(date.Weekday().String()),
	})
}

type userResponse struct {
	Email    string            `json:"email"`
	Location *location.Address `json:"location_data"`
}

func (s *Server) User(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, userResponse{
		Email:    s.app.User.Email,
		Location: s.app.User.Location,
	})
}
