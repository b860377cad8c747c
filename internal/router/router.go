package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"studybuddy-backend/internal/handlers"
	"studybuddy-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	fileHandler *handlers.FileHandler,
	quizHandler *handlers.QuizHandler,
	flashcardHandler *handlers.FlashcardHandler,
	redisClient *redis.Client,
	rateLimitPerMin int,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth endpoints get a tight limit, everything else the general one.
	authLimiter := middleware.NewRateLimiter(redisClient, 10, time.Minute)
	apiLimiter := middleware.NewRateLimiter(redisClient, rateLimitPerMin, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── File Routes ────
		r.Route("/files", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(apiLimiter.Middleware)
			r.Post("/upload", fileHandler.Upload)
			r.Get("/", fileHandler.List)
			r.Delete("/{id}", fileHandler.Delete)
			r.Get("/{id}/download", fileHandler.DownloadOriginal)
			r.Get("/{id}/markdown", fileHandler.DownloadMarkdown)
		})

		// ──── Quiz Routes ────
		r.Route("/quizzes", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(apiLimiter.Middleware)
			r.Post("/generate", quizHandler.Generate)
			r.Get("/{fileID}/download", quizHandler.Download)
		})

		// ──── Flashcard Routes ────
		r.Route("/flashcards", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(apiLimiter.Middleware)
			r.Post("/generate", flashcardHandler.Generate)
			r.Get("/{fileID}/download", flashcardHandler.Download)
		})
	})

	return r
}
