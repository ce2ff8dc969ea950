package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

const avatarFormField = "avatar"

// multipartOverhead leaves room for part headers and boundaries on top of
// the image itself.
const multipartOverhead = 64 << 10

func (s *HTTPServer) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	maxSize := s.avatars.MaxSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = common.NewValidationError(avatarFormField, "must be at most %d bytes", maxSize)
		} else {
			err = common.NewValidationError(avatarFormField, "please upload an image")
		}
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	defer file.Close()

	// one extra byte is enough to detect an oversized file
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		s.writeError(w, r, common.NewValidationError(avatarFormField, "unreadable upload"), http.StatusBadRequest)
		return
	}

	if err := s.avatars.Upload(r.Context(), PrincipalFromContext(r.Context()), header.Filename, data); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "avatar uploaded"})
}

func (s *HTTPServer) deleteAvatar(w http.ResponseWriter, r *http.Request) {
	if err := s.avatars.Remove(r.Context(), PrincipalFromContext(r.Context())); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "avatar deleted"})
}

func (s *HTTPServer) getAvatar(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.avatars.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
