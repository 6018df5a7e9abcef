package service

import (
	"context"
	"errors"
	"time"

	"memoryatlas/internal/domain"
	"memoryatlas/internal/game"
	"memoryatlas/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUnsupportedMode - the requested mode has no registered source.
	ErrUnsupportedMode = game.ErrUnsupportedMode

	ErrMemberNotFound      = errors.New("member not found")
	ErrSettingNotFound     = errors.New("no active setting for game mode")
	ErrSessionNotFound     = errors.New("session not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrActiveSessionExists = errors.New("member already has a session in progress")
	ErrSessionFinished     = errors.New("session is not in progress")
	ErrMaxQuestionsReached = errors.New("session already reached max questions")
	ErrAlreadyAnswered     = errors.New("question already answered")
	ErrInvalidCoordinates  = errors.New("coordinates out of range")
	ErrInvalidTimeTaken    = errors.New("time taken must be non-negative")
	ErrIssueRace           = errors.New("concurrent question issuance, retry")
)

// GameService orchestrates the location-guessing game: session lifecycle,
// question issuance and answer scoring, all against the shared store.
type GameService struct {
	db        *pgxpool.Pool
	sessions  *repository.SessionRepository
	questions *repository.QuestionRepository
	settings  *repository.SettingRepository
	members   *repository.MemberRepository
	factory   *game.Factory
}

// NewGameService wires the service against db, drawing questions from the
// memory/city catalog in the same database.
func NewGameService(db *pgxpool.Pool) *GameService {
	return NewGameServiceWithCatalog(db, repository.NewMemoryRepository(db))
}

// NewGameServiceWithCatalog allows a custom question catalog.
func NewGameServiceWithCatalog(db *pgxpool.Pool, catalog game.Catalog) *GameService {
	return &GameService{
		db:        db,
		sessions:  repository.NewSessionRepository(db),
		questions: repository.NewQuestionRepository(db),
		settings:  repository.NewSettingRepository(db),
		members:   repository.NewMemberRepository(db),
		factory:   game.NewFactory(catalog),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateSession starts a new IN_PROGRESS session for the member. At most
// one active session per member: a second create is rejected with
// ErrActiveSessionExists, whether it loses a lookup or the partial unique
// index.
func (s *GameService) CreateSession(ctx context.Context, memberID int64, mode domain.GameMode, targetMemberID *int64) (*domain.GameSession, error) {
	if !mode.IsValid() {
		return nil, ErrUnsupportedMode
	}
	if _, err := s.factory.Source(mode); err != nil {
		return nil, err
	}

	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	// target member only means something when guessing someone's memories
	if mode != domain.GameModeMemoriesRandom {
		targetMemberID = nil
	}
	if targetMemberID != nil {
		if _, err := s.members.GetByID(ctx, *targetMemberID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrMemberNotFound
			}
			return nil, err
		}
	}

	if _, err := s.settings.FindActive(ctx, mode); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}

	if _, err := s.sessions.FindActiveByMember(ctx, memberID); err == nil {
		return nil, ErrActiveSessionExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	session := &domain.GameSession{
		MemberID:       memberID,
		TargetMemberID: targetMemberID,
		GameMode:       mode,
		Status:         domain.GameStatusInProgress,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrActiveSessionExists
		}
		return nil, err
	}
	return session, nil
}

// IssuedQuestion is the outcome of a next-question call. Question is nil
// when the source ran dry and the session completed early.
type IssuedQuestion struct {
	Session          *domain.GameSession
	Question         *domain.GameQuestion
	TimeLimitSeconds int
	MaxQuestions     int
}

// NextQuestion issues the next question of the member's session. Reissuing
// is idempotent: while the latest question is unanswered it is returned
// again instead of a new one. The ground truth stays server-side; callers
// shape the response without it.
func (s *GameService) NextQuestion(ctx context.Context, sessionID, memberID int64) (*IssuedQuestion, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := s.sessions.LockTx(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.MemberID != memberID {
		return nil, ErrSessionNotFound
	}
	if session.Status != domain.GameStatusInProgress {
		return nil, ErrSessionFinished
	}

	setting, err := s.settings.FindActive(ctx, session.GameMode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}

	latest, err := s.questions.LatestTx(ctx, tx, sessionID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// an open question is handed back as-is
	if latest != nil && !latest.Answered() {
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return &IssuedQuestion{
			Session:          session,
			Question:         latest,
			TimeLimitSeconds: setting.TimeLimitSeconds,
			MaxQuestions:     setting.MaxQuestions,
		}, nil
	}

	if session.TotalQuestions >= setting.MaxQuestions {
		return nil, ErrMaxQuestionsReached
	}

	order := 1
	if latest != nil {
		order = latest.QuestionOrder + 1
	}

	used, err := s.questions.UsedSourceIDsTx(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	source, err := s.factory.Source(session.GameMode)
	if err != nil {
		return nil, err
	}

	loc, err := source.NextLocation(ctx, session, used)
	if err != nil {
		if errors.Is(err, game.ErrSourceExhausted) {
			// no more questions available: complete early at current totals
			session.Finish(domain.GameStatusCompleted, time.Now().UTC())
			if err := s.sessions.SaveTx(ctx, tx, session); err != nil {
				return nil, err
			}
			if err := tx.Commit(ctx); err != nil {
				return nil, err
			}
			return &IssuedQuestion{
				Session:          session,
				TimeLimitSeconds: setting.TimeLimitSeconds,
				MaxQuestions:     setting.MaxQuestions,
			}, nil
		}
		return nil, err
	}

	question := &domain.GameQuestion{
		GameSessionID:       sessionID,
		QuestionOrder:       order,
		SourceID:            loc.SourceID,
		CorrectLatitude:     loc.Latitude,
		CorrectLongitude:    loc.Longitude,
		CorrectLocationName: loc.Name,
		MediaRefs:           loc.MediaRefs,
	}
	if err := s.questions.CreateTx(ctx, tx, question); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrIssueRace
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &IssuedQuestion{
		Session:          session,
		Question:         question,
		TimeLimitSeconds: setting.TimeLimitSeconds,
		MaxQuestions:     setting.MaxQuestions,
	}, nil
}

// AnswerResult carries the scored question with its ground truth plus the
// updated session aggregates.
type AnswerResult struct {
	Question *domain.GameQuestion
	Session  *domain.GameSession
}

// SubmitAnswer scores the member's guess for an unanswered question and
// folds it into the session. Exactly one submission wins: the question row
// is locked and a second submission is rejected with ErrAlreadyAnswered.
func (s *GameService) SubmitAnswer(ctx context.Context, memberID, questionID int64, lat, lon float64, timeTakenSeconds int) (*AnswerResult, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}
	if timeTakenSeconds < 0 {
		return nil, ErrInvalidTimeTaken
	}

	// resolve the session id first so locks are always taken session-first,
	// same as question issuance
	probe, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := s.sessions.LockTx(ctx, tx, probe.GameSessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.MemberID != memberID {
		return nil, ErrQuestionNotFound
	}
	if session.Status != domain.GameStatusInProgress {
		return nil, ErrSessionFinished
	}

	question, err := s.questions.LockTx(ctx, tx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if question.Answered() {
		return nil, ErrAlreadyAnswered
	}

	setting, err := s.settings.FindActive(ctx, session.GameMode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}

	scorer := game.NewScorer(setting)
	distance, score := scorer.Evaluate(question.CorrectLatitude, question.CorrectLongitude, lat, lon)

	now := time.Now().UTC()
	question.PlayerLatitude = &lat
	question.PlayerLongitude = &lon
	question.DistanceKm = &distance
	question.Score = &score
	question.TimeTakenSeconds = &timeTakenSeconds
	question.AnsweredAt = &now
	if err := s.questions.SaveAnswerTx(ctx, tx, question); err != nil {
		return nil, err
	}

	session.ApplyAnswer(score, game.CorrectThreshold)
	if session.TotalQuestions >= setting.MaxQuestions {
		session.Finish(domain.GameStatusCompleted, now)
	}
	if err := s.sessions.SaveTx(ctx, tx, session); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &AnswerResult{Question: question, Session: session}, nil
}

// GiveUp abandons the member's in-progress session. Unanswered issued
// questions stay unanswered and are not counted.
func (s *GameService) GiveUp(ctx context.Context, sessionID, memberID int64) (*domain.GameSession, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := s.sessions.LockTx(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.MemberID != memberID {
		return nil, ErrSessionNotFound
	}
	if !session.Finish(domain.GameStatusGivenUp, time.Now().UTC()) {
		return nil, ErrSessionFinished
	}
	if err := s.sessions.SaveTx(ctx, tx, session); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns one of the member's sessions.
func (s *GameService) GetSession(ctx context.Context, sessionID, memberID int64) (*domain.GameSession, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.MemberID != memberID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ActiveSession returns the member's IN_PROGRESS session, if any.
func (s *GameService) ActiveSession(ctx context.Context, memberID int64) (*domain.GameSession, error) {
	session, err := s.sessions.FindActiveByMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// ListSessions pages through the member's sessions, newest first.
func (s *GameService) ListSessions(ctx context.Context, memberID int64, mode *domain.GameMode, lastID int64, pageSize int) ([]*domain.GameSession, error) {
	if mode != nil && !mode.IsValid() {
		return nil, ErrUnsupportedMode
	}
	return s.sessions.ListByMember(ctx, memberID, mode, lastID, pageSize)
}

// SessionQuestions returns the questions of an owned session in order.
func (s *GameService) SessionQuestions(ctx context.Context, sessionID, memberID int64) ([]*domain.GameQuestion, error) {
	if _, err := s.GetSession(ctx, sessionID, memberID); err != nil {
		return nil, err
	}
	return s.questions.ListBySession(ctx, sessionID)
}

// MemberStats summarises the member's finished sessions.
func (s *GameService) MemberStats(ctx context.Context, memberID int64) (*domain.MemberGameStats, error) {
	return s.sessions.MemberStats(ctx, memberID)
}

// ActiveSettings lists the active per-mode configuration.
func (s *GameService) ActiveSettings(ctx context.Context) ([]*domain.GameSetting, error) {
	return s.settings.ListActive(ctx)
}
