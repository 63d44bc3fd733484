package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/todump/todump/internal/breakdown"
	"github.com/todump/todump/internal/domain"
)

const maxBodyBytes = 1 << 20

// Request and response bodies of the /api surface.
type (
	TodoResponse struct {
		Todo domain.Task `json:"todo"`
	}
	TodosResponse struct {
		Todos []domain.Task `json:"todos"`
	}
	BulkRequest struct {
		Todos []domain.NewTask `json:"todos"`
	}
	UpdateRequest struct {
		ID        string  `json:"id,omitempty"`
		Text      *string `json:"text,omitempty"`
		Completed *bool   `json:"completed,omitempty"`
	}
	DeleteResponse struct {
		Success bool `json:"success"`
	}
	BreakdownRequest struct {
		Text string `json:"text"`
	}
	BreakdownResponse struct {
		Steps []string `json:"steps"`
	}
)

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request payload", domain.ErrValidation)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.storeFor(r).List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TodosResponse{Todos: tasks})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.NewTask
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.storeFor(r).Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, TodoResponse{Todo: task})
}

func (s *Server) handleCreateMany(w http.ResponseWriter, r *http.Request) {
	var in BulkRequest
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(in.Todos) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: todos array is required", domain.ErrValidation))
		return
	}
	tasks, err := s.storeFor(r).CreateMany(r.Context(), in.Todos)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, TodosResponse{Todos: tasks})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in UpdateRequest
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := in.ID
	if v, ok := mux.Vars(r)["id"]; ok {
		id = v
	}
	task, err := s.storeFor(r).Update(r.Context(), id, domain.TaskPatch{Text: in.Text, Completed: in.Completed})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TodoResponse{Todo: task})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		id = r.URL.Query().Get("id")
	}
	if err := s.storeFor(r).Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	var in BreakdownRequest
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.Breaker == nil {
		s.writeError(w, r, fmt.Errorf("%w: breakdown is disabled on this server", breakdown.ErrConfiguration))
		return
	}
	steps, err := s.deps.Breaker.Breakdown(r.Context(), in.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BreakdownResponse{Steps: steps})
}
