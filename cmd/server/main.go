package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/molsimcloud/backend/internal/config"
	"github.com/molsimcloud/backend/internal/database"
	"github.com/molsimcloud/backend/internal/handlers"
	mW "github.com/molsimcloud/backend/internal/middleware"
	"github.com/molsimcloud/backend/internal/services"
	"github.com/spf13/viper"
)

// @title MolSim Cloud Backend API
// @version 1.0
// @description API for the molecular-dynamics simulation platform
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.SetDefault("jwt.expiry_hours", 168)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	securityConfig := config.LoadSecurityConfig()

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	authService := services.NewAuthService(db, redisClient, securityConfig.SignupCredits)
	contactService := services.NewContactService(db)
	simulationService := services.NewSimulationService(db)
	simulationHandler := handlers.NewSimulationHandler(simulationService)
	internalHandler := handlers.NewInternalHandler(db)
	rateLimiter := services.NewRateLimitService(db, services.RateLimitConfig{
		MaxPerMinute: securityConfig.MaxRequestsPerMinute,
		MaxPerHour:   securityConfig.MaxRequestsPerHour,
		Retention:    securityConfig.RateLimitRetention,
	})

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   securityConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.With(mW.RateLimit(rateLimiter, "register")).Post("/auth/register", authService.Register)
		r.With(mW.RateLimit(rateLimiter, "login")).Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)
		r.With(mW.RateLimit(rateLimiter, "contact")).Post("/contact", contactService.Submit)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/account", authService.GetAccount)

			r.With(mW.RateLimit(rateLimiter, "createSimulation")).Post("/simulations", simulationHandler.CreateSimulation)
			r.Get("/simulations", simulationHandler.ListSimulations)
			r.Get("/simulations/{simulationId}", simulationHandler.GetSimulation)
			r.Delete("/simulations/{simulationId}", simulationHandler.DeleteSimulation)
		})

		// Worker endpoints (service token, separate trust boundary)
		r.Group(func(r chi.Router) {
			r.Use(mW.RequireWorkerAuth(securityConfig.WorkerToken))

			r.Put("/internal/simulations/{simulationId}/status", simulationHandler.UpdateStatus)
			r.Get("/internal/audit-logs", internalHandler.ListAuditLogs)
			r.Get("/internal/security-logs", internalHandler.ListSecurityLogs)
			r.Get("/internal/contact-messages", contactService.ListMessages)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
