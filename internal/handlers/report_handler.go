package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"field-backend/internal/services"
	"field-backend/internal/timeutil"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

func (h *ReportHandler) InspectionPDF(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	pdf, err := h.Service.GenerateInspectionPDF(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", name))
	w.Write(pdf)
}

func (h *ReportHandler) DayBookPDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.Service.GenerateDayBookPDF(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=daybook_%s.pdf", timeutil.Now().Format(timeutil.DateLayout)))
	w.Write(pdf)
}
