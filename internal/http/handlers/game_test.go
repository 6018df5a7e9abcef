package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memoryatlas/internal/domain"
	"memoryatlas/internal/service"

	"github.com/gin-gonic/gin"
)

func issuedQuestion() *domain.GameQuestion {
	return &domain.GameQuestion{
		ID:                  11,
		GameSessionID:       5,
		QuestionOrder:       2,
		SourceID:            99,
		CorrectLatitude:     37.5665,
		CorrectLongitude:    126.9780,
		CorrectLocationName: "Seoul",
		MediaRefs:           []string{"img-a", "img-b"},
	}
}

func TestQuestionResponse_WithholdsAnswer(t *testing.T) {
	payload, err := json.Marshal(newQuestionResponse(issuedQuestion(), 60, 5))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, forbidden := range []string{"37.5665", "126.978", "Seoul", "correct", "source_id", "99"} {
		if bytes.Contains(payload, []byte(forbidden)) {
			t.Fatalf("pre-answer payload leaks %q: %s", forbidden, payload)
		}
	}

	var resp QuestionResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.QuestionID != 11 || resp.QuestionOrder != 2 || len(resp.MediaRefs) != 2 {
		t.Fatalf("payload lost question data: %+v", resp)
	}
	if resp.TimeLimitSeconds != 60 || resp.MaxQuestions != 5 {
		t.Fatalf("payload lost setting data: %+v", resp)
	}
}

func TestAnsweredQuestionResponse_RevealsAnswer(t *testing.T) {
	q := issuedQuestion()
	lat, lon, dist := 38.5665, 126.9780, 111.19
	score, taken := 0, 12
	now := time.Now().UTC()
	q.PlayerLatitude = &lat
	q.PlayerLongitude = &lon
	q.DistanceKm = &dist
	q.Score = &score
	q.TimeTakenSeconds = &taken
	q.AnsweredAt = &now

	resp := newAnsweredQuestionResponse(q)
	if resp.CorrectLatitude != 37.5665 || resp.CorrectLocationName != "Seoul" {
		t.Fatalf("answered payload must reveal the ground truth: %+v", resp)
	}
	if resp.PlayerLatitude != lat || resp.PlayerLongitude != lon {
		t.Fatalf("answered payload must echo the guess: %+v", resp)
	}
	if resp.DistanceKm != dist || resp.Score != score || resp.TimeTakenSeconds != taken {
		t.Fatalf("answered payload must carry scoring results: %+v", resp)
	}
}

func TestDomainQuestion_NeverMarshalsGroundTruth(t *testing.T) {
	// even if a handler marshals the domain struct directly, the withheld
	// fields must not serialize
	payload, err := json.Marshal(issuedQuestion())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, forbidden := range []string{"37.5665", "Seoul", "correct_latitude", "source_id"} {
		if bytes.Contains(payload, []byte(forbidden)) {
			t.Fatalf("domain marshal leaks %q: %s", forbidden, payload)
		}
	}
}

func TestGameError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
		body string
	}{
		{service.ErrInvalidCoordinates, http.StatusBadRequest, service.ErrInvalidCoordinates.Error()},
		{service.ErrSessionNotFound, http.StatusNotFound, service.ErrSessionNotFound.Error()},
		{service.ErrActiveSessionExists, http.StatusConflict, service.ErrActiveSessionExists.Error()},
		{service.ErrIssueRace, http.StatusConflict, service.ErrIssueRace.Error()},
		// unexpected errors must not leak their text to the client
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "db error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		gameError(c, tc.err)

		if w.Code != tc.code {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.code, w.Code)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte(tc.body)) {
			t.Fatalf("%v: expected body to carry %q, got %s", tc.err, tc.body, w.Body.String())
		}
		if tc.code == http.StatusInternalServerError && bytes.Contains(w.Body.Bytes(), []byte("connection reset")) {
			t.Fatalf("internal error text leaked to client: %s", w.Body.String())
		}
	}
}
