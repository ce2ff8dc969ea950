package rest

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

var taskSortFields = map[string]models.TaskSortField{
	"createdAt":   models.TaskSortCreatedAt,
	"updatedAt":   models.TaskSortUpdatedAt,
	"description": models.TaskSortDescription,
	"completed":   models.TaskSortCompleted,
}

// parseTaskFilter reads ?completed=, ?sortBy=field_asc|field_desc, ?limit=
// and ?skip=. Values that do not parse are ignored rather than rejected.
func parseTaskFilter(q url.Values) models.TaskFilter {
	var f models.TaskFilter

	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		f.Completed = &completed
	}

	if v := q.Get("sortBy"); v != "" {
		field, dir, _ := strings.Cut(v, "_")
		if col, ok := taskSortFields[field]; ok {
			f.SortBy = col
			f.SortDesc = dir == "desc"
		}
	}

	if n, err := strconv.ParseUint(q.Get("limit"), 10, 64); err == nil {
		f.Limit = n
	}
	if n, err := strconv.ParseUint(q.Get("skip"), 10, 64); err == nil {
		f.Skip = n
	}

	return f
}

func (s *HTTPServer) createTask(w http.ResponseWriter, r *http.Request) {
	var in services.CreateTaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	task, err := s.tasks.Create(r.Context(), PrincipalFromContext(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *HTTPServer) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context(), PrincipalFromContext(r.Context()), parseTaskFilter(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *HTTPServer) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(r.Context(), PrincipalFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *HTTPServer) updateTask(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	task, err := s.tasks.Update(r.Context(), PrincipalFromContext(r.Context()), r.PathValue("id"), raw)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *HTTPServer) deleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Delete(r.Context(), PrincipalFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
