// Package handlers provides HTTP handlers for API endpoints
package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/services"
)

// TaskHandler exposes an employee's active tasks over HTTP
type TaskHandler struct {
	service services.TaskProcessor
	token   string
}

// NewTaskHandler creates a new task handler. Requests must carry
// "Authorization: Bearer <token>"; with an empty token every API call is refused.
func NewTaskHandler(service services.TaskProcessor, token string) *TaskHandler {
	return &TaskHandler{service: service, token: token}
}

// Register mounts the handler routes on mux
func (h *TaskHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/employees/{id}/tasks", h.authorize(h.HandleListActive))
	mux.HandleFunc("POST /api/tasks/{id}/complete", h.authorize(h.HandleComplete))
}

func (h *TaskHandler) authorize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.token == "" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "API is disabled"})
			return
		}
		given, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(given), []byte(h.token)) != 1 {
			slog.Warn("Rejected API request", "path", r.URL.Path, "remote", r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

type taskJSON struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    string  `json:"priority"`
	Label       string  `json:"priority_label"`
	Completed   bool    `json:"is_completed"`
	Version     int64   `json:"version"`
}

func toJSON(t models.Task) taskJSON {
	return taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Label:       t.Priority.Label(),
		Completed:   t.IsCompleted,
		Version:     t.Version,
	}
}

type pageJSON struct {
	Items      []taskJSON `json:"items"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Total      int64      `json:"total"`
}

// HandleListActive returns one page of the employee's active tasks
func (h *TaskHandler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid employee id", http.StatusBadRequest)
		return
	}
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if page, err = strconv.Atoi(p); err != nil {
			http.Error(w, "Invalid page", http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.ListActiveTasks(r.Context(), employeeID, page)
	if err != nil {
		writeError(w, err)
		return
	}

	body := pageJSON{
		Items:      make([]taskJSON, 0, len(result.Items)),
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Total:      result.Total,
	}
	for _, t := range result.Items {
		body.Items = append(body.Items, toJSON(t))
	}
	writeJSON(w, http.StatusOK, body)
}

type completeRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

type completeResponse struct {
	Task         taskJSON `json:"task"`
	Transitioned bool     `json:"transitioned"`
}

// HandleComplete completes a task on behalf of its assignee
func (h *TaskHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EmployeeID == 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, transitioned, err := h.service.CompleteTask(r.Context(), uint(taskID), req.EmployeeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{Task: toJSON(*task), Transitioned: transitioned})
}

// HandleHealth reports liveness
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// StatusFor maps an error to an HTTP status code
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrConnectivity), errors.Is(err, apperr.ErrExternalService):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
