package repository

import (
	"context"

	"memoryatlas/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, member_id, target_member_id, game_mode, status,
	total_score, total_questions, correct_answers, accuracy, start_time, end_time`

func scanSession(row pgx.Row) (*domain.GameSession, error) {
	s := &domain.GameSession{}
	err := row.Scan(&s.ID, &s.MemberID, &s.TargetMemberID, &s.GameMode, &s.Status,
		&s.TotalScore, &s.TotalQuestions, &s.CorrectAnswers, &s.Accuracy,
		&s.StartTime, &s.EndTime)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new IN_PROGRESS session. The partial unique index on
// (member_id) WHERE status='IN_PROGRESS' makes a second concurrent create
// fail with a unique violation; the caller maps that to a conflict.
func (r *SessionRepository) Create(ctx context.Context, s *domain.GameSession) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO game_session (member_id, target_member_id, game_mode, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, start_time`,
		s.MemberID, s.TargetMemberID, s.GameMode, domain.GameStatusInProgress,
	).Scan(&s.ID, &s.StartTime)
}

func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*domain.GameSession, error) {
	return scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM game_session WHERE id = $1`, id))
}

// FindActiveByMember returns the member's IN_PROGRESS session, if any.
func (r *SessionRepository) FindActiveByMember(ctx context.Context, memberID int64) (*domain.GameSession, error) {
	return scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM game_session
		 WHERE member_id = $1 AND status = $2`,
		memberID, domain.GameStatusInProgress))
}

// LockTx loads a session inside tx with its row locked until commit.
func (r *SessionRepository) LockTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.GameSession, error) {
	return scanSession(tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM game_session WHERE id = $1 FOR UPDATE`, id))
}

// SaveTx writes back the mutable session fields inside tx.
func (r *SessionRepository) SaveTx(ctx context.Context, tx pgx.Tx, s *domain.GameSession) error {
	_, err := tx.Exec(ctx,
		`UPDATE game_session
		 SET status = $2, total_score = $3, total_questions = $4,
		     correct_answers = $5, accuracy = $6, end_time = $7
		 WHERE id = $1`,
		s.ID, s.Status, s.TotalScore, s.TotalQuestions,
		s.CorrectAnswers, s.Accuracy, s.EndTime)
	return err
}

// ListByMember returns sessions newest-first with keyset pagination:
// rows with id < lastID (all rows when lastID <= 0), optionally filtered
// by mode.
func (r *SessionRepository) ListByMember(ctx context.Context, memberID int64, mode *domain.GameMode, lastID int64, pageSize int) ([]*domain.GameSession, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM game_session
		 WHERE member_id = $1
		   AND ($2::text IS NULL OR game_mode = $2)
		   AND ($3::bigint <= 0 OR id < $3)
		 ORDER BY id DESC
		 LIMIT $4`,
		memberID, mode, lastID, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.GameSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// MemberStats aggregates over the member's finished sessions.
func (r *SessionRepository) MemberStats(ctx context.Context, memberID int64) (*domain.MemberGameStats, error) {
	st := &domain.MemberGameStats{}
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = $2),
		        COALESCE(MAX(total_score), 0),
		        COALESCE(SUM(total_score), 0),
		        COALESCE(AVG(accuracy) FILTER (WHERE total_questions > 0), 0)
		 FROM game_session
		 WHERE member_id = $1 AND status <> $3`,
		memberID, domain.GameStatusCompleted, domain.GameStatusInProgress,
	).Scan(&st.GamesPlayed, &st.Completed, &st.BestScore, &st.TotalScore, &st.AvgAccuracy)
	if err != nil {
		return nil, err
	}
	return st, nil
}
