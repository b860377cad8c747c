package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studybuddy-backend/internal/config"
	"studybuddy-backend/internal/database"
	"studybuddy-backend/internal/handlers"
	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/repository"
	"studybuddy-backend/internal/router"
	"studybuddy-backend/internal/services"
	"studybuddy-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting StudyBuddy Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	fileRepo := repository.NewFileRepo(pool)
	embeddingRepo := repository.NewEmbeddingRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.GeminiEmbeddingModel,
		cfg.GeminiConcurrentReqs,
	)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini client initialized")

	// ──── Step 6: Initialize Storage ────
	storage, err := services.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		log.Fatalf("✗ Storage initialization failed: %v", err)
	}
	log.Printf("✓ Local storage ready at %s", cfg.StoragePath)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	extractService := services.NewExtractService()
	authService := services.NewAuthService(userRepo, redisClient, jwtAuth)
	llmTimeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	embeddingService := services.NewEmbeddingService(geminiService, embeddingRepo, cfg.ChunkSize, cfg.ChunkOverlap, llmTimeout)
	studyAidService := services.NewStudyAidService(geminiService, storage, fileRepo, redisClient, llmTimeout)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	fileHandler := handlers.NewFileHandler(fileRepo, embeddingRepo, extractService, storage, redisClient, cfg.MaxUploadMB)
	quizHandler := handlers.NewQuizHandler(studyAidService)
	flashcardHandler := handlers.NewFlashcardHandler(studyAidService)

	// ──── Step 7: Start Embedding Worker Pool ────
	workerPool := worker.NewPool(redisClient, embeddingService, storage, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Embedding worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		fileHandler,
		quizHandler,
		flashcardHandler,
		redisClient,
		cfg.RateLimitPerMin,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ StudyBuddy Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
