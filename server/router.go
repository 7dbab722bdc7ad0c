package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.RequestLogger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("punchd: attendance automation api"))
	})

	r.Route("/punch", func(r chi.Router) {
		r.Get("/", s.Punch)
		r.Get("/get_state", s.GetState)
		r.Get("/{type:[01]}", s.PunchWithType)
	})

	r.Route("/token", func(r chi.Router) {
		r.Get("/age", s.TokenAge)
		r.Get("/refresh", s.TokenRefresh)
	})

	r.Route("/user", func(r chi.Router) {
		r.Get("/", s.User)
		r.Get("/work_time_for_date", s.WorkTimeForDate)
	})

	return r
}
