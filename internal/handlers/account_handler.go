package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"field-backend/internal/filters"
	"field-backend/internal/middleware"
	"field-backend/internal/models"
	"field-backend/internal/services"
	"field-backend/internal/timeutil"
	"field-backend/pkg/utils"
)

// AccountHandler serves the payment and receipt endpoints. The lists
// default to today's window; search bypasses it.
type AccountHandler struct {
	Service *services.AccountService
}

func NewAccountHandler(s *services.AccountService) *AccountHandler {
	return &AccountHandler{Service: s}
}

func accountFilterFromQuery(r *http.Request) filters.AccountFilter {
	q := r.URL.Query()
	f := filters.AccountFilter{
		Search: q.Get("search"),
		Mode:   filters.PayMode(q.Get("mode")),
		Range:  filters.TodayRange(),
	}
	fromStr, toStr := q.Get("from_date"), q.Get("to_date")
	if fromStr != "" || toStr != "" {
		from, err1 := timeutil.ParseInGST(timeutil.DateLayout, fromStr)
		to, err2 := timeutil.ParseInGST(timeutil.DateLayout, toStr)
		if err1 != nil {
			from = to
		}
		if err2 != nil {
			to = from
		}
		if err1 == nil || err2 == nil {
			f.Range = filters.NewDateRange(from, to)
		}
	}
	return f
}

func (h *AccountHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		http.Error(w, "Email not found in context", http.StatusUnauthorized)
		return
	}

	payment, err := h.Service.CreatePayment(r.Context(), &req, email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusCreated, payment)
}

func (h *AccountHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Service.ListPayments(r.Context(), accountFilterFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	utils.JSON(w, http.StatusOK, payments)
}

func (h *AccountHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.Service.GetPayment(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, payment)
}

func (h *AccountHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeletePayment(r.Context(), mux.Vars(r)["name"]); err != nil {
		utils.Error(w, http.StatusConflict, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *AccountHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.Service.SubmitPayment(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		utils.Error(w, http.StatusConflict, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, payment)
}

func (h *AccountHandler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		http.Error(w, "Email not found in context", http.StatusUnauthorized)
		return
	}

	receipt, err := h.Service.CreateReceipt(r.Context(), &req, email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusCreated, receipt)
}

func (h *AccountHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.Service.ListReceipts(r.Context(), accountFilterFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if receipts == nil {
		receipts = []*models.Receipt{}
	}
	utils.JSON(w, http.StatusOK, receipts)
}

func (h *AccountHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.Service.GetReceipt(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, receipt)
}

func (h *AccountHandler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteReceipt(r.Context(), mux.Vars(r)["name"]); err != nil {
		utils.Error(w, http.StatusConflict, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *AccountHandler) SubmitReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.Service.SubmitReceipt(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		utils.Error(w, http.StatusConflict, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, receipt)
}

func (h *AccountHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetDashboardStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}
