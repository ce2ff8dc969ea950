package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error to a response. Known input and lookup
// errors get their own status; anything else gets fallback and a generic
// message, and is logged.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, common.ErrInvalidUpdateFields),
		errors.Is(err, common.ErrDuplicateEmail),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: common.ErrorNotFound.Error()})
	default:
		s.logger.Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", RequestIDFromContext(r.Context()),
		)
		writeJSON(w, fallback, errorBody{Error: http.StatusText(fallback)})
	}
}

const maxJSONBody = 1 << 20

// decodeJSON reads a JSON object body into v. Failures are reported as
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		return common.NewValidationError("", "malformed JSON body")
	}
	return nil
}
