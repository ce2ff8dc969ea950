package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	user, token, err := s.users.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	user, token, err := s.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), PrincipalFromContext(r.Context())); err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "logged out"})
}

func (s *HTTPServer) logoutAll(w http.ResponseWriter, r *http.Request) {
	if err := s.users.LogoutAll(r.Context(), PrincipalFromContext(r.Context())); err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "logged out of all sessions"})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PrincipalFromContext(r.Context()).User)
}

func (s *HTTPServer) updateMe(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), PrincipalFromContext(r.Context()), raw)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) deleteMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.DeleteAccount(r.Context(), PrincipalFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
