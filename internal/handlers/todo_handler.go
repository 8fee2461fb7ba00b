package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"field-backend/internal/filters"
	"field-backend/internal/middleware"
	"field-backend/internal/models"
	"field-backend/internal/services"
	"field-backend/pkg/utils"
)

type TodoHandler struct {
	Service *services.InspectionService
}

func NewTodoHandler(s *services.InspectionService) *TodoHandler {
	return &TodoHandler{Service: s}
}

// CreateTodo registers a new assignment for an inspector.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	todo, err := h.Service.CreateTodo(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusCreated, todo)
}

// ListTodos returns the caller's open assignments, lead data attached,
// optionally narrowed by ?priority=.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		http.Error(w, "Email not found in context", http.StatusUnauthorized)
		return
	}

	todos, err := h.Service.FetchTodos(r.Context(), email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	todos = filters.Todos(todos, r.URL.Query().Get("priority"))
	utils.JSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) UpdateTodoStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req models.UpdateTodoStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateTodoStatus(r.Context(), name, req.Status); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"name": name, "status": string(req.Status)})
}
