package http

import (
	"os"
	"strconv"
	"time"

	"memoryatlas/internal/config"
	"memoryatlas/internal/http/handlers"
	"memoryatlas/internal/http/middleware"
	"memoryatlas/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, version string) {
	RegisterRoutesWithConfig(r, db, version, nil)
}

func RegisterRoutesWithConfig(r *gin.Engine, db *pgxpool.Pool, version string, cfg *config.Config) {
	feed := ws.NewFeed()
	h := handlers.NewHandler(db, feed)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	// per-member limits on the mutating game endpoints
	guessRateLimit := 120
	guessRateWindow := time.Minute
	if cfg != nil {
		guessRateLimit = cfg.GuessRateLimit
		guessRateWindow = time.Duration(cfg.GuessRateWindow) * time.Second
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	guessRL := middleware.GuessRateLimit(guessRateLimit, guessRateWindow)

	game := v1.Group("/game")
	{
		game.GET("/modes", h.Modes)
		game.GET("/me", middleware.JWT(), h.MyStats)

		game.POST("/sessions", middleware.JWT(), h.CreateSession)
		game.GET("/sessions", middleware.JWT(), h.ListSessions)
		game.GET("/sessions/:id", middleware.JWT(), h.GetSession)
		game.GET("/sessions/:id/questions", middleware.JWT(), h.SessionQuestions)
		game.POST("/sessions/:id/questions", middleware.JWT(), guessRL, h.NextQuestion)
		game.POST("/sessions/:id/giveup", middleware.JWT(), h.GiveUp)
		game.POST("/questions/:id/answer", middleware.JWT(), guessRL, h.SubmitAnswer)
	}

	// Session progress feed; upgrade attempts are throttled in-process
	// since the connection outlives any Redis window
	wsRL := middleware.NewMemoryRateLimiter(10, time.Minute)
	r.GET("/ws/game", wsRL.Handler(), h.WS(feed))
}
