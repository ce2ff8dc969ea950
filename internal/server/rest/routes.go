package rest

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// accounts
	mux.HandleFunc("POST /users", s.register)
	mux.HandleFunc("POST /users/login", s.login)
	mux.Handle("POST /users/logout", s.authenticate(s.logout))
	mux.Handle("POST /users/logoutAll", s.authenticate(s.logoutAll))
	mux.Handle("GET /users/me", s.authenticate(s.me))
	mux.Handle("PATCH /users/me", s.authenticate(s.updateMe))
	mux.Handle("DELETE /users/me", s.authenticate(s.deleteMe))

	// avatars
	mux.Handle("POST /users/me/avatar", s.authenticate(s.uploadAvatar))
	mux.Handle("DELETE /users/me/avatar", s.authenticate(s.deleteAvatar))
	mux.HandleFunc("GET /users/{id}/avatar", s.getAvatar)

	// tasks
	mux.Handle("POST /tasks", s.authenticate(s.createTask))
	mux.Handle("GET /tasks", s.authenticate(s.listTasks))
	mux.Handle("GET /tasks/{id}", s.authenticate(s.getTask))
	mux.Handle("PATCH /tasks/{id}", s.authenticate(s.updateTask))
	mux.Handle("DELETE /tasks/{id}", s.authenticate(s.deleteTask))

	// MetricsMiddleware reads r.Pattern, so it must sit directly on the mux.
	return chain(observability.MetricsMiddleware(mux),
		s.recovery,
		s.requestID,
		s.accessLog,
	)
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
