package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"field-backend/internal/filters"
	"field-backend/internal/middleware"
	"field-backend/internal/models"
	"field-backend/internal/services"
	"field-backend/internal/timeutil"
	"field-backend/pkg/utils"
)

type InspectionHandler struct {
	Service *services.InspectionService
}

func NewInspectionHandler(s *services.InspectionService) *InspectionHandler {
	return &InspectionHandler{Service: s}
}

func (h *InspectionHandler) CreateInspection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		http.Error(w, "Email not found in context", http.StatusUnauthorized)
		return
	}

	inspection, err := h.Service.CreateInspection(r.Context(), &req, email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusCreated, inspection)
}

func (h *InspectionHandler) GetInspection(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	inspection, err := h.Service.FetchInspectionDetails(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, inspection)
}

// ListInspections looks records up by one indexed field, defaulting to
// the caller's own. ?first=true returns only the newest match; status,
// search and date-window params narrow the result in memory.
func (h *InspectionHandler) ListInspections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	field := q.Get("field")
	value := q.Get("value")
	if field == "" {
		email, ok := middleware.GetEmailFromContext(r.Context())
		if !ok {
			http.Error(w, "Email not found in context", http.StatusUnauthorized)
			return
		}
		field, value = "owner", email
	}

	if q.Get("first") == "true" {
		inspection, err := h.Service.FetchFirstInspectionByField(r.Context(), field, value)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// A nil inspection encodes as JSON null: no match is not an error.
		utils.JSON(w, http.StatusOK, inspection)
		return
	}

	list, err := h.Service.FetchAllInspectionsByField(r.Context(), field, value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	f := filters.InspectionFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	if fromStr, toStr := q.Get("from_date"), q.Get("to_date"); fromStr != "" || toStr != "" {
		from, err1 := timeutil.ParseInGST(timeutil.DateLayout, fromStr)
		to, err2 := timeutil.ParseInGST(timeutil.DateLayout, toStr)
		if err1 != nil && err2 != nil {
			http.Error(w, "invalid date window", http.StatusBadRequest)
			return
		}
		if err1 != nil {
			from = to
		}
		if err2 != nil {
			to = from
		}
		f.Range = filters.NewDateRange(from, to)
		f.RangeSet = true
	}

	utils.JSON(w, http.StatusOK, filters.Inspections(list, f))
}

func (h *InspectionHandler) UpdateInspection(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var patch models.InspectionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	inspection, err := h.Service.UpdateInspectionByID(r.Context(), name, &patch)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInspectionLocked),
			errors.Is(err, models.ErrInspectionTerminal),
			errors.Is(err, models.ErrScheduleLapsed),
			errors.Is(err, models.ErrCompletionUnconfirmed):
			utils.Error(w, http.StatusConflict, err.Error())
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	utils.JSON(w, http.StatusOK, inspection)
}

// UpdateLead changes an inquiry's pipeline status directly.
func (h *InspectionHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateLeadStatus(r.Context(), name, req.Status); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"name": name, "status": req.Status})
}
