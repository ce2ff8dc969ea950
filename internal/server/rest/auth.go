package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/observability"
)

const authRejectedMessage = "please authenticate"

type principalKey struct{}

// withPrincipal stores the authenticated caller in the context.
func withPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller bound by the auth gate, or nil on
// unauthenticated routes.
func PrincipalFromContext(ctx context.Context) *models.Principal {
	if p, ok := ctx.Value(principalKey{}).(*models.Principal); ok {
		return p
	}
	return nil
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if len(h) < len(common.BearerPrefix) || !strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
		return "", common.ErrMissingToken
	}
	token := strings.TrimSpace(h[len(common.BearerPrefix):])
	if token == "" {
		return "", common.ErrMissingToken
	}
	return token, nil
}

// authenticate is the gate in front of every protected handler. It only
// establishes who the caller is; resource checks belong to the services.
func (s *HTTPServer) authenticate(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			s.reject(w, r, observability.ReasonMissingToken, err)
			return
		}

		p, err := s.auth.Validate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, common.ErrInvalidToken) {
				s.logger.Error(r.Context(), "token validation failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
			}
			s.reject(w, r, observability.ReasonInvalidToken, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

func (s *HTTPServer) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	observability.AuthRejectionsTotal.WithLabelValues(reason).Inc()
	s.logger.Debug(r.Context(), "authentication rejected",
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"error", err,
	)
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: authRejectedMessage})
}
