package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"memoryatlas/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionRepository struct {
	db *pgxpool.Pool
}

func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, game_session_id, question_order, source_id,
	correct_latitude, correct_longitude, correct_location_name, media_refs,
	player_latitude, player_longitude, distance_km, score,
	time_taken_seconds, answered_at`

func scanQuestion(row pgx.Row) (*domain.GameQuestion, error) {
	q := &domain.GameQuestion{}
	var mediaBytes []byte
	err := row.Scan(&q.ID, &q.GameSessionID, &q.QuestionOrder, &q.SourceID,
		&q.CorrectLatitude, &q.CorrectLongitude, &q.CorrectLocationName, &mediaBytes,
		&q.PlayerLatitude, &q.PlayerLongitude, &q.DistanceKm, &q.Score,
		&q.TimeTakenSeconds, &q.AnsweredAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(mediaBytes, &q.MediaRefs); err != nil {
		return nil, fmt.Errorf("decode media_refs for question %d: %w", q.ID, err)
	}
	return q, nil
}

// CreateTx inserts an unanswered question inside tx. A concurrent insert at
// the same (session, order) trips the unique index; the caller maps the
// unique violation to a conflict.
func (r *QuestionRepository) CreateTx(ctx context.Context, tx pgx.Tx, q *domain.GameQuestion) error {
	mediaJSON, err := json.Marshal(q.MediaRefs)
	if err != nil {
		mediaJSON = []byte("[]")
	}

	return tx.QueryRow(ctx,
		`INSERT INTO game_question
			(game_session_id, question_order, source_id,
			 correct_latitude, correct_longitude, correct_location_name, media_refs)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		q.GameSessionID, q.QuestionOrder, q.SourceID,
		q.CorrectLatitude, q.CorrectLongitude, q.CorrectLocationName, mediaJSON,
	).Scan(&q.ID)
}

func (r *QuestionRepository) FindByID(ctx context.Context, id int64) (*domain.GameQuestion, error) {
	return scanQuestion(r.db.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM game_question WHERE id = $1`, id))
}

// LockTx loads a question inside tx with its row locked until commit.
func (r *QuestionRepository) LockTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.GameQuestion, error) {
	return scanQuestion(tx.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM game_question WHERE id = $1 FOR UPDATE`, id))
}

// LatestTx returns the question with the highest order in the session, or
// pgx.ErrNoRows when none were issued yet.
func (r *QuestionRepository) LatestTx(ctx context.Context, tx pgx.Tx, sessionID int64) (*domain.GameQuestion, error) {
	return scanQuestion(tx.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM game_question
		 WHERE game_session_id = $1
		 ORDER BY question_order DESC
		 LIMIT 1`, sessionID))
}

// UsedSourceIDsTx lists the source ids already asked in the session.
func (r *QuestionRepository) UsedSourceIDsTx(ctx context.Context, tx pgx.Tx, sessionID int64) ([]int64, error) {
	rows, err := tx.Query(ctx,
		`SELECT source_id FROM game_question WHERE game_session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveAnswerTx writes the answer fields of a scored question inside tx.
func (r *QuestionRepository) SaveAnswerTx(ctx context.Context, tx pgx.Tx, q *domain.GameQuestion) error {
	_, err := tx.Exec(ctx,
		`UPDATE game_question
		 SET player_latitude = $2, player_longitude = $3, distance_km = $4,
		     score = $5, time_taken_seconds = $6, answered_at = $7
		 WHERE id = $1`,
		q.ID, q.PlayerLatitude, q.PlayerLongitude, q.DistanceKm,
		q.Score, q.TimeTakenSeconds, q.AnsweredAt)
	return err
}

// ListBySession returns the session's questions in asking order.
func (r *QuestionRepository) ListBySession(ctx context.Context, sessionID int64) ([]*domain.GameQuestion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+questionColumns+` FROM game_question
		 WHERE game_session_id = $1
		 ORDER BY question_order`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.GameQuestion
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, q)
	}
	return res, rows.Err()
}
