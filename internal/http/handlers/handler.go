package handlers

import (
	"memoryatlas/internal/service"
	"memoryatlas/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB          *pgxpool.Pool
	GameService *service.GameService
	Feed        *ws.Feed
}

func NewHandler(db *pgxpool.Pool, feed *ws.Feed) *Handler {
	return &Handler{
		DB:          db,
		GameService: service.NewGameService(db),
		Feed:        feed,
	}
}

// getMemberID extracts member_id set by the JWT middleware.
func getMemberID(c interface{ Get(any) (any, bool) }) (int64, bool) {
	val, ok := c.Get("member_id")
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
