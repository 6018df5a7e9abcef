package ws

import "memoryatlas/internal/domain"

// server → client event types
const (
	EventQuestionIssued   = "question_issued"
	EventAnswerScored     = "answer_scored"
	EventSessionCompleted = "session_completed"
	EventSessionGivenUp   = "session_given_up"
)

// SessionSnapshot mirrors the session aggregates. Never includes question
// ground truth.
type SessionSnapshot struct {
	ID             int64             `json:"id"`
	GameMode       domain.GameMode   `json:"game_mode"`
	Status         domain.GameStatus `json:"status"`
	TotalScore     int               `json:"total_score"`
	TotalQuestions int               `json:"total_questions"`
	CorrectAnswers int               `json:"correct_answers"`
	Accuracy       float64           `json:"accuracy"`
}

// QuestionProgress carries per-question progress for scored answers.
type QuestionProgress struct {
	QuestionOrder int      `json:"question_order"`
	Score         *int     `json:"score,omitempty"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
}

// SessionEvent is pushed to the owning member after each state change.
type SessionEvent struct {
	Type     string            `json:"type"`
	Session  SessionSnapshot   `json:"session"`
	Question *QuestionProgress `json:"question,omitempty"`
}

// Snapshot builds the wire form of a session.
func Snapshot(s *domain.GameSession) SessionSnapshot {
	return SessionSnapshot{
		ID:             s.ID,
		GameMode:       s.GameMode,
		Status:         s.Status,
		TotalScore:     s.TotalScore,
		TotalQuestions: s.TotalQuestions,
		CorrectAnswers: s.CorrectAnswers,
		Accuracy:       s.Accuracy,
	}
}
