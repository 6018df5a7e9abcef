package domain

import "time"

// Member is managed by the member service; the game engine only reads it.
type Member struct {
	ID        int64     `db:"id" json:"id"`
	Nickname  string    `db:"nickname" json:"nickname"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MemberGameStats summarises a member's finished sessions.
type MemberGameStats struct {
	GamesPlayed   int     `db:"games_played" json:"games_played"`
	Completed     int     `db:"completed" json:"completed"`
	BestScore     int     `db:"best_score" json:"best_score"`
	TotalScore    int64   `db:"total_score" json:"total_score"`
	AvgAccuracy   float64 `db:"avg_accuracy" json:"avg_accuracy"`
}
