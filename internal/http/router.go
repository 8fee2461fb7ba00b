package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"field-backend/internal/handlers"
	"field-backend/internal/middleware"
	"field-backend/internal/notify"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	todoHandler *handlers.TodoHandler,
	inspectionHandler *handlers.InspectionHandler,
	leadHandler *handlers.LeadHandler,
	accountHandler *handlers.AccountHandler,
	uploadHandler *handlers.UploadHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	hub *notify.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/verify-login", authHandler.VerifyLogin).Methods("POST")

	// Account/session routes
	authAPI := r.PathPrefix("/auth").Subrouter()
	authAPI.Use(authMiddleware.Authenticate)
	authAPI.HandleFunc("/me", authHandler.Me).Methods("GET")
	authAPI.HandleFunc("/totp/setup", authHandler.SetupTOTP).Methods("POST")
	authAPI.HandleFunc("/totp/verify", authHandler.VerifyTOTP).Methods("POST")
	authAPI.HandleFunc("/totp", authHandler.DisableTOTP).Methods("DELETE")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.Handle("", authMiddleware.RequireRole("admin")(http.HandlerFunc(authHandler.ListUsers))).Methods("GET")

	// Protected API routes - Todos (field assignments)
	todosAPI := r.PathPrefix("/api/todos").Subrouter()
	todosAPI.Use(authMiddleware.Authenticate)
	todosAPI.HandleFunc("", todoHandler.ListTodos).Methods("GET")
	todosAPI.Handle("", authMiddleware.RequireRole("admin", "sales")(http.HandlerFunc(todoHandler.CreateTodo))).Methods("POST")
	todosAPI.HandleFunc("/{name}/status", todoHandler.UpdateTodoStatus).Methods("PATCH")

	// Protected API routes - Site inspections
	inspectionsAPI := r.PathPrefix("/api/inspections").Subrouter()
	inspectionsAPI.Use(authMiddleware.Authenticate)
	inspectionsAPI.HandleFunc("", inspectionHandler.ListInspections).Methods("GET")
	inspectionsAPI.HandleFunc("", inspectionHandler.CreateInspection).Methods("POST")
	inspectionsAPI.HandleFunc("/{name}", inspectionHandler.GetInspection).Methods("GET")
	inspectionsAPI.HandleFunc("/{name}", inspectionHandler.UpdateInspection).Methods("PATCH")
	inspectionsAPI.HandleFunc("/{name}/report", reportHandler.InspectionPDF).Methods("GET")

	// Protected API routes - Leads
	leadsAPI := r.PathPrefix("/api/leads").Subrouter()
	leadsAPI.Use(authMiddleware.Authenticate)
	leadsAPI.HandleFunc("", leadHandler.ListLeads).Methods("GET")
	leadsAPI.HandleFunc("/{name}", leadHandler.GetLead).Methods("GET")
	leadsAPI.HandleFunc("/{name}/status", inspectionHandler.UpdateLead).Methods("PATCH")

	// Protected API routes - Payments (accountant only)
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate, authMiddleware.RequireAccountantAccess)
	paymentsAPI.HandleFunc("", accountHandler.ListPayments).Methods("GET")
	paymentsAPI.HandleFunc("", accountHandler.CreatePayment).Methods("POST")
	paymentsAPI.HandleFunc("/{name}", accountHandler.GetPayment).Methods("GET")
	paymentsAPI.HandleFunc("/{name}", accountHandler.DeletePayment).Methods("DELETE")
	paymentsAPI.HandleFunc("/{name}/submit", accountHandler.SubmitPayment).Methods("POST")

	// Protected API routes - Receipts (accountant only)
	receiptsAPI := r.PathPrefix("/api/receipts").Subrouter()
	receiptsAPI.Use(authMiddleware.Authenticate, authMiddleware.RequireAccountantAccess)
	receiptsAPI.HandleFunc("", accountHandler.ListReceipts).Methods("GET")
	receiptsAPI.HandleFunc("", accountHandler.CreateReceipt).Methods("POST")
	receiptsAPI.HandleFunc("/{name}", accountHandler.GetReceipt).Methods("GET")
	receiptsAPI.HandleFunc("/{name}", accountHandler.DeleteReceipt).Methods("DELETE")
	receiptsAPI.HandleFunc("/{name}/submit", accountHandler.SubmitReceipt).Methods("POST")

	// Protected API routes - Accountant dashboard and day book
	dashboardAPI := r.PathPrefix("/api/dashboard").Subrouter()
	dashboardAPI.Use(authMiddleware.Authenticate, authMiddleware.RequireAccountantAccess)
	dashboardAPI.HandleFunc("/stats", accountHandler.DashboardStats).Methods("GET")
	dashboardAPI.HandleFunc("/daybook", reportHandler.DayBookPDF).Methods("GET")

	// Protected API routes - Uploads
	uploadAPI := r.PathPrefix("/api/upload").Subrouter()
	uploadAPI.Use(authMiddleware.Authenticate)
	uploadAPI.HandleFunc("", uploadHandler.Upload).Methods("POST")

	// Live updates
	r.HandleFunc("/ws", hub.HandleWebSocket)

	// Health endpoints (no auth, probed by the cluster)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	detailedHealth := authMiddleware.Authenticate(
		authMiddleware.RequireRole("admin")(http.HandlerFunc(healthHandler.DetailedHealth)))
	r.Handle("/health/detailed", detailedHealth).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}
