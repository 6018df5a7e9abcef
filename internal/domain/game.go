package domain

import "time"

// GameMode determines where questions are drawn from
type GameMode string

const (
	GameModeMyMemories     GameMode = "MY_MEMORIES"
	GameModeRandom         GameMode = "RANDOM"
	GameModeMemoriesRandom GameMode = "MEMORIES_RANDOM"
)

// IsValid reports whether the mode is one of the known modes.
func (m GameMode) IsValid() bool {
	switch m {
	case GameModeMyMemories, GameModeRandom, GameModeMemoriesRandom:
		return true
	}
	return false
}

// GameStatus - lifecycle state of a session
type GameStatus string

const (
	GameStatusInProgress GameStatus = "IN_PROGRESS"
	GameStatusCompleted  GameStatus = "COMPLETED"
	GameStatusGivenUp    GameStatus = "GIVEN_UP"
)

// Terminal reports whether no further state changes are allowed.
func (s GameStatus) Terminal() bool {
	return s == GameStatusCompleted || s == GameStatusGivenUp
}

// GameSetting - per-mode configuration, managed outside the engine.
// At most one active row per mode.
type GameSetting struct {
	ID                        int64    `db:"id" json:"id"`
	GameMode                  GameMode `db:"game_mode" json:"game_mode"`
	MaxQuestions              int      `db:"max_questions" json:"max_questions"`
	TimeLimitSeconds          int      `db:"time_limit_seconds" json:"time_limit_seconds"`
	MaxDistanceForFullScoreKm float64  `db:"max_distance_for_full_score_km" json:"max_distance_for_full_score_km"`
	ScoringFormula            string   `db:"scoring_formula" json:"scoring_formula"`
	IsActive                  bool     `db:"is_active" json:"is_active"`
}

// GameSession - one player's run of questions under a single mode
type GameSession struct {
	ID             int64      `db:"id" json:"id"`
	MemberID       int64      `db:"member_id" json:"member_id"`
	TargetMemberID *int64     `db:"target_member_id" json:"target_member_id,omitempty"`
	GameMode       GameMode   `db:"game_mode" json:"game_mode"`
	Status         GameStatus `db:"status" json:"status"`
	TotalScore     int        `db:"total_score" json:"total_score"`
	TotalQuestions int        `db:"total_questions" json:"total_questions"`
	CorrectAnswers int        `db:"correct_answers" json:"correct_answers"`
	Accuracy       float64    `db:"accuracy" json:"accuracy"`
	StartTime      time.Time  `db:"start_time" json:"start_time"`
	EndTime        *time.Time `db:"end_time" json:"end_time,omitempty"`
}

// ApplyAnswer folds one scored question into the session aggregates.
// correctThreshold is the score a question must exceed to count towards
// accuracy.
func (s *GameSession) ApplyAnswer(score, correctThreshold int) {
	s.TotalQuestions++
	s.TotalScore += score
	if score > correctThreshold {
		s.CorrectAnswers++
	}
	s.Accuracy = float64(s.CorrectAnswers) / float64(s.TotalQuestions)
}

// Finish moves the session into a terminal status. Returns false if the
// session is already terminal; the caller must treat that as a conflict.
func (s *GameSession) Finish(status GameStatus, at time.Time) bool {
	if s.Status != GameStatusInProgress || !status.Terminal() {
		return false
	}
	s.Status = status
	s.EndTime = &at
	return true
}

// GameQuestion - one round within a session. The correct_* fields are the
// withheld ground truth: they never carry json tags, responses expose them
// only after the question has been answered.
type GameQuestion struct {
	ID                  int64      `db:"id" json:"id"`
	GameSessionID       int64      `db:"game_session_id" json:"game_session_id"`
	QuestionOrder       int        `db:"question_order" json:"question_order"`
	SourceID            int64      `db:"source_id" json:"-"`
	CorrectLatitude     float64    `db:"correct_latitude" json:"-"`
	CorrectLongitude    float64    `db:"correct_longitude" json:"-"`
	CorrectLocationName string     `db:"correct_location_name" json:"-"`
	MediaRefs           []string   `db:"media_refs" json:"media_refs"`
	PlayerLatitude      *float64   `db:"player_latitude" json:"player_latitude,omitempty"`
	PlayerLongitude     *float64   `db:"player_longitude" json:"player_longitude,omitempty"`
	DistanceKm          *float64   `db:"distance_km" json:"distance_km,omitempty"`
	Score               *int       `db:"score" json:"score,omitempty"`
	TimeTakenSeconds    *int       `db:"time_taken_seconds" json:"time_taken_seconds,omitempty"`
	AnsweredAt          *time.Time `db:"answered_at" json:"answered_at,omitempty"`
}

// Answered reports whether the question has been scored already.
func (q *GameQuestion) Answered() bool {
	return q.AnsweredAt != nil
}
