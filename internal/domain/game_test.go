package domain

import (
	"testing"
	"time"
)

func TestGameMode_IsValid(t *testing.T) {
	for _, m := range []GameMode{GameModeMyMemories, GameModeRandom, GameModeMemoriesRandom} {
		if !m.IsValid() {
			t.Fatalf("mode %s should be valid", m)
		}
	}
	if GameMode("SPEED_RUN").IsValid() {
		t.Fatalf("unknown mode should not be valid")
	}
}

func TestGameSession_ApplyAnswer(t *testing.T) {
	s := &GameSession{Status: GameStatusInProgress}

	s.ApplyAnswer(1000, 0)
	if s.TotalQuestions != 1 || s.TotalScore != 1000 || s.CorrectAnswers != 1 {
		t.Fatalf("unexpected aggregates after first answer: %+v", s)
	}
	if s.Accuracy != 1.0 {
		t.Fatalf("accuracy = %f, want 1.0", s.Accuracy)
	}

	// zero score is not counted correct under the default threshold
	s.ApplyAnswer(0, 0)
	if s.CorrectAnswers != 1 {
		t.Fatalf("zero score must not count as correct, got %d", s.CorrectAnswers)
	}
	if s.Accuracy != 0.5 {
		t.Fatalf("accuracy = %f, want 0.5", s.Accuracy)
	}
	if s.TotalScore != 1000 {
		t.Fatalf("total score = %d, want 1000", s.TotalScore)
	}
}

func TestGameSession_Finish(t *testing.T) {
	now := time.Now()

	s := &GameSession{Status: GameStatusInProgress}
	if !s.Finish(GameStatusCompleted, now) {
		t.Fatalf("expected finish to succeed on in-progress session")
	}
	if s.Status != GameStatusCompleted || s.EndTime == nil {
		t.Fatalf("finish did not set terminal state: %+v", s)
	}

	// terminal states are final
	if s.Finish(GameStatusGivenUp, now) {
		t.Fatalf("finish must be rejected on a terminal session")
	}
	if s.Status != GameStatusCompleted {
		t.Fatalf("status changed after rejected finish")
	}

	// finish only moves to a terminal status
	s2 := &GameSession{Status: GameStatusInProgress}
	if s2.Finish(GameStatusInProgress, now) {
		t.Fatalf("finish to IN_PROGRESS must be rejected")
	}
}

func TestGameQuestion_Answered(t *testing.T) {
	q := &GameQuestion{}
	if q.Answered() {
		t.Fatalf("fresh question must be unanswered")
	}
	now := time.Now()
	q.AnsweredAt = &now
	if !q.Answered() {
		t.Fatalf("question with answered_at must be answered")
	}
}
