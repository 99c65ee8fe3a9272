package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"caredraft/internal/auth"
	"caredraft/internal/config"
	"caredraft/internal/database"
	"caredraft/internal/handlers"
	"caredraft/internal/jobs"
	"caredraft/internal/models"
	"caredraft/internal/repository"
	"caredraft/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository and services
	repo := repository.NewRepository(database.GetDB())
	workflowService := services.NewWorkflowService(repo)
	reviewService := services.NewReviewService(repo, workflowService)
	notificationService := services.NewNotificationService(repo)
	deadlineService := services.NewDeadlineService()
	deadlineProcessor := services.NewDeadlineProcessor(repo, deadlineService, workflowService, notificationService)

	// Initialize handlers
	proposalHandler := handlers.NewProposalHandler(repo, workflowService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	deadlineHandler := handlers.NewDeadlineHandler(repo, deadlineProcessor)

	// Start the deadline job
	deadlineJob := jobs.NewDeadlineJob(deadlineProcessor, cfg.App.DeadlineCheckInterval)
	go deadlineJob.Start()
	defer deadlineJob.Stop()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Proposal endpoints
		api.POST("/proposals", proposalHandler.CreateProposal)
		api.GET("/proposals", proposalHandler.GetProposals)
		api.GET("/proposals/:id", proposalHandler.GetProposal)
		api.POST("/proposals/:id/transition", proposalHandler.TransitionProposal)
		api.GET("/proposals/:id/history", proposalHandler.GetHistory)

		// Review endpoints
		api.POST("/proposals/:id/reviewers", reviewHandler.AssignReviewers)
		api.POST("/proposals/:id/decision", reviewHandler.SubmitDecision)

		// Notification endpoints
		api.GET("/notifications", notificationHandler.GetNotifications)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	// Admin routes (protected + manager/admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.RequireRole(models.RoleAdmin, models.RoleManager))
	{
		admin.GET("/deadline-rules", deadlineHandler.GetRules)
		admin.POST("/deadline-rules", deadlineHandler.CreateRule)
		admin.DELETE("/deadline-rules/:id", deadlineHandler.DeleteRule)
		admin.POST("/deadlines/run", deadlineHandler.RunNow)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
