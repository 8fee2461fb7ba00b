package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"field-backend/internal/models"
	"field-backend/internal/repositories"
	"field-backend/pkg/utils"
)

// LeadHandler exposes read access to the inquiry pipeline. Leads are
// created by the sales workflow; this service only reads them and moves
// their status (see InspectionHandler.UpdateLead).
type LeadHandler struct {
	Repo *repositories.LeadRepository
}

func NewLeadHandler(repo *repositories.LeadRepository) *LeadHandler {
	return &LeadHandler{Repo: repo}
}

func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if leads == nil {
		leads = []*models.Lead{}
	}
	utils.JSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Repo.GetByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, lead)
}
