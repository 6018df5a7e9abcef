package repository

import (
	"context"

	"memoryatlas/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingRepository struct {
	db *pgxpool.Pool
}

func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{db: db}
}

// FindActive returns the single active setting for a mode. pgx.ErrNoRows
// propagates when the mode has no active configuration.
func (r *SettingRepository) FindActive(ctx context.Context, mode domain.GameMode) (*domain.GameSetting, error) {
	s := &domain.GameSetting{}
	err := r.db.QueryRow(ctx,
		`SELECT id, game_mode, max_questions, time_limit_seconds,
		        max_distance_for_full_score_km, scoring_formula, is_active
		 FROM game_setting
		 WHERE game_mode = $1 AND is_active`,
		mode,
	).Scan(&s.ID, &s.GameMode, &s.MaxQuestions, &s.TimeLimitSeconds,
		&s.MaxDistanceForFullScoreKm, &s.ScoringFormula, &s.IsActive)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListActive returns the active settings of all modes.
func (r *SettingRepository) ListActive(ctx context.Context) ([]*domain.GameSetting, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, game_mode, max_questions, time_limit_seconds,
		        max_distance_for_full_score_km, scoring_formula, is_active
		 FROM game_setting
		 WHERE is_active
		 ORDER BY game_mode`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.GameSetting
	for rows.Next() {
		s := &domain.GameSetting{}
		if err := rows.Scan(&s.ID, &s.GameMode, &s.MaxQuestions, &s.TimeLimitSeconds,
			&s.MaxDistanceForFullScoreKm, &s.ScoringFormula, &s.IsActive); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
