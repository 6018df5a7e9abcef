package ws

import (
	"bytes"
	"encoding/json"
	"testing"

	"memoryatlas/internal/domain"
)

func TestFeed_PublishReachesOwnSubscribersOnly(t *testing.T) {
	feed := NewFeed()
	mine := feed.Subscribe(1, nil)
	other := feed.Subscribe(2, nil)

	session := &domain.GameSession{ID: 10, MemberID: 1, GameMode: domain.GameModeRandom, Status: domain.GameStatusInProgress, TotalScore: 500, TotalQuestions: 1}
	feed.Publish(1, SessionEvent{Type: EventAnswerScored, Session: Snapshot(session)})

	select {
	case payload := <-mine.Send:
		var ev SessionEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Type != EventAnswerScored || ev.Session.ID != 10 || ev.Session.TotalScore != 500 {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatalf("expected event for member 1")
	}

	select {
	case <-other.Send:
		t.Fatalf("member 2 must not receive member 1's events")
	default:
	}
}

func TestFeed_SlowSubscriberIsSkipped(t *testing.T) {
	feed := NewFeed()
	sub := feed.Subscribe(1, nil)

	session := &domain.GameSession{ID: 1, MemberID: 1}
	for i := 0; i < cap(sub.Send)+5; i++ {
		feed.Publish(1, SessionEvent{Type: EventQuestionIssued, Session: Snapshot(session)})
	}
	// publish must not block even though the buffer is full
	if len(sub.Send) != cap(sub.Send) {
		t.Fatalf("send buffer = %d, want full (%d)", len(sub.Send), cap(sub.Send))
	}
}

func TestFeed_CloseUnsubscribes(t *testing.T) {
	feed := NewFeed()
	sub := feed.Subscribe(1, nil)
	if feed.Subscribers(1) != 1 {
		t.Fatalf("subscribers = %d, want 1", feed.Subscribers(1))
	}

	sub.Close()
	if feed.Subscribers(1) != 0 {
		t.Fatalf("subscribers after close = %d, want 0", feed.Subscribers(1))
	}

	// double close is a no-op
	sub.Close()
}

func TestSnapshot_NoGroundTruthFields(t *testing.T) {
	session := &domain.GameSession{ID: 3, MemberID: 9, GameMode: domain.GameModeMyMemories, Status: domain.GameStatusCompleted, Accuracy: 0.8}
	payload, err := json.Marshal(SessionEvent{Type: EventSessionCompleted, Session: Snapshot(session)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, forbidden := range []string{"correct_latitude", "correct_longitude", "correct_location_name", "member_id"} {
		if bytes.Contains(payload, []byte(forbidden)) {
			t.Fatalf("event payload leaks %q: %s", forbidden, payload)
		}
	}
}
