package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"field-backend/internal/auth"
	"field-backend/internal/cache"
	"field-backend/internal/config"
	"field-backend/internal/database"
	"field-backend/internal/db"
	"field-backend/internal/handlers"
	"field-backend/internal/health"
	h "field-backend/internal/http"
	"field-backend/internal/middleware"
	"field-backend/internal/notify"
	"field-backend/internal/repositories"
	"field-backend/internal/services"
	"field-backend/internal/storage"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (lead snapshots served from DB)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	leadRepo := repositories.NewLeadRepository(pool)
	todoRepo := repositories.NewTodoRepository(pool)
	inspectionRepo := repositories.NewInspectionRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	receiptRepo := repositories.NewReceiptRepository(pool)
	totpRepo := repositories.NewTOTPRepository(pool)

	// Live-update hub, wired into every service as the notifier
	hub := notify.NewHub()

	// Initialize services
	inspectionService := services.NewInspectionService(todoRepo, leadRepo, inspectionRepo)
	inspectionService.SetNotifier(hub)
	accountService := services.NewAccountService(paymentRepo, receiptRepo)
	accountService.SetNotifier(hub)
	userService := services.NewUserService(userRepo, jwtManager)
	totpService := services.NewTOTPService(userRepo, totpRepo)
	reportService := services.NewReportService(leadRepo, inspectionRepo, accountService)

	// Attachment storage (S3-compatible)
	uploader, err := storage.NewUploader(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, totpService)
	todoHandler := handlers.NewTodoHandler(inspectionService)
	inspectionHandler := handlers.NewInspectionHandler(inspectionService)
	leadHandler := handlers.NewLeadHandler(leadRepo)
	accountHandler := handlers.NewAccountHandler(accountService)
	uploadHandler := handlers.NewUploadHandler(uploader)
	reportHandler := handlers.NewReportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		todoHandler,
		inspectionHandler,
		leadHandler,
		accountHandler,
		uploadHandler,
		reportHandler,
		healthHandler,
		hub,
		authMiddleware,
	)

	// Wrap with panic recovery and metrics middleware
	handler := middleware.PanicRecovery(corsMiddleware(router))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
