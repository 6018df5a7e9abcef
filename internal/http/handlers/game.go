package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"memoryatlas/internal/domain"
	"memoryatlas/internal/http/middleware"
	"memoryatlas/internal/logger"
	"memoryatlas/internal/service"
	"memoryatlas/internal/ws"

	"github.com/gin-gonic/gin"
)

// CreateSessionRequest starts a game
type CreateSessionRequest struct {
	GameMode       domain.GameMode `json:"game_mode" binding:"required"`
	TargetMemberID *int64          `json:"target_member_id"`
}

// SessionResponse - session aggregates, no question data
type SessionResponse struct {
	SessionID      int64             `json:"session_id"`
	GameMode       domain.GameMode   `json:"game_mode"`
	TargetMemberID *int64            `json:"target_member_id,omitempty"`
	Status         domain.GameStatus `json:"status"`
	TotalScore     int               `json:"total_score"`
	TotalQuestions int               `json:"total_questions"`
	CorrectAnswers int               `json:"correct_answers"`
	Accuracy       float64           `json:"accuracy"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        *time.Time        `json:"end_time,omitempty"`
}

func newSessionResponse(s *domain.GameSession) SessionResponse {
	return SessionResponse{
		SessionID:      s.ID,
		GameMode:       s.GameMode,
		TargetMemberID: s.TargetMemberID,
		Status:         s.Status,
		TotalScore:     s.TotalScore,
		TotalQuestions: s.TotalQuestions,
		CorrectAnswers: s.CorrectAnswers,
		Accuracy:       s.Accuracy,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
	}
}

// QuestionResponse is the pre-answer view of a question. It never carries
// the correct coordinates or location name: the question id is the only
// reference the client gets until it answers.
type QuestionResponse struct {
	QuestionID       int64    `json:"question_id"`
	SessionID        int64    `json:"session_id"`
	QuestionOrder    int      `json:"question_order"`
	MediaRefs        []string `json:"media_refs"`
	TimeLimitSeconds int      `json:"time_limit_seconds,omitempty"`
	MaxQuestions     int      `json:"max_questions,omitempty"`
}

func newQuestionResponse(q *domain.GameQuestion, timeLimitSeconds, maxQuestions int) QuestionResponse {
	refs := q.MediaRefs
	if refs == nil {
		refs = []string{}
	}
	return QuestionResponse{
		QuestionID:       q.ID,
		SessionID:        q.GameSessionID,
		QuestionOrder:    q.QuestionOrder,
		MediaRefs:        refs,
		TimeLimitSeconds: timeLimitSeconds,
		MaxQuestions:     maxQuestions,
	}
}

// AnsweredQuestionResponse is the post-answer view: only now the ground
// truth is revealed, alongside the guess and the score.
type AnsweredQuestionResponse struct {
	QuestionID          int64      `json:"question_id"`
	SessionID           int64      `json:"session_id"`
	QuestionOrder       int        `json:"question_order"`
	MediaRefs           []string   `json:"media_refs"`
	CorrectLatitude     float64    `json:"correct_latitude"`
	CorrectLongitude    float64    `json:"correct_longitude"`
	CorrectLocationName string     `json:"correct_location_name"`
	PlayerLatitude      float64    `json:"player_latitude"`
	PlayerLongitude     float64    `json:"player_longitude"`
	DistanceKm          float64    `json:"distance_km"`
	Score               int        `json:"score"`
	TimeTakenSeconds    int        `json:"time_taken_seconds"`
	AnsweredAt          *time.Time `json:"answered_at"`
}

func newAnsweredQuestionResponse(q *domain.GameQuestion) AnsweredQuestionResponse {
	refs := q.MediaRefs
	if refs == nil {
		refs = []string{}
	}
	return AnsweredQuestionResponse{
		QuestionID:          q.ID,
		SessionID:           q.GameSessionID,
		QuestionOrder:       q.QuestionOrder,
		MediaRefs:           refs,
		CorrectLatitude:     q.CorrectLatitude,
		CorrectLongitude:    q.CorrectLongitude,
		CorrectLocationName: q.CorrectLocationName,
		PlayerLatitude:      *q.PlayerLatitude,
		PlayerLongitude:     *q.PlayerLongitude,
		DistanceKm:          *q.DistanceKm,
		Score:               *q.Score,
		TimeTakenSeconds:    *q.TimeTakenSeconds,
		AnsweredAt:          q.AnsweredAt,
	}
}

// gameError maps service errors onto HTTP statuses.
func gameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedMode),
		errors.Is(err, service.ErrInvalidCoordinates),
		errors.Is(err, service.ErrInvalidTimeTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrSettingNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrActiveSessionExists),
		errors.Is(err, service.ErrSessionFinished),
		errors.Is(err, service.ErrMaxQuestionsReached),
		errors.Is(err, service.ErrAlreadyAnswered),
		errors.Is(err, service.ErrIssueRace):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("unexpected storage error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
	}
}

// CreateSession starts a new session for the caller
func (h *Handler) CreateSession(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	session, err := h.GameService.CreateSession(ctx, memberID, req.GameMode, req.TargetMemberID)
	if err != nil {
		if errors.Is(err, service.ErrActiveSessionExists) {
			// point the caller at the session that blocks the create
			resp := gin.H{"error": err.Error()}
			if active, aerr := h.GameService.ActiveSession(ctx, memberID); aerr == nil {
				resp["active_session_id"] = active.ID
			}
			c.JSON(http.StatusConflict, resp)
			return
		}
		gameError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSessionResponse(session))
}

// NextQuestion issues (or re-serves) the session's current question
func (h *Handler) NextQuestion(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
		return
	}
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	issue, err := h.GameService.NextQuestion(c.Request.Context(), sessionID, memberID)
	if err != nil {
		gameError(c, err)
		return
	}

	// source ran dry: the session completed early instead of failing
	if issue.Question == nil {
		middleware.SessionsFinished.WithLabelValues(string(issue.Session.Status)).Inc()
		h.Feed.Publish(memberID, ws.SessionEvent{
			Type:    ws.EventSessionCompleted,
			Session: ws.Snapshot(issue.Session),
		})
		c.JSON(http.StatusOK, gin.H{
			"completed": true,
			"session":   newSessionResponse(issue.Session),
		})
		return
	}

	middleware.QuestionsIssued.WithLabelValues(string(issue.Session.GameMode)).Inc()
	h.Feed.Publish(memberID, ws.SessionEvent{
		Type:    ws.EventQuestionIssued,
		Session: ws.Snapshot(issue.Session),
		Question: &ws.QuestionProgress{
			QuestionOrder: issue.Question.QuestionOrder,
		},
	})

	c.JSON(http.StatusOK, newQuestionResponse(issue.Question, issue.TimeLimitSeconds, issue.MaxQuestions))
}

// SubmitAnswerRequest carries the guess
type SubmitAnswerRequest struct {
	Latitude         *float64 `json:"latitude" binding:"required"`
	Longitude        *float64 `json:"longitude" binding:"required"`
	TimeTakenSeconds *int     `json:"time_taken_seconds" binding:"required"`
}

// SubmitAnswer scores the caller's guess for a question
func (h *Handler) SubmitAnswer(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
		return
	}
	questionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := h.GameService.SubmitAnswer(c.Request.Context(), memberID, questionID,
		*req.Latitude, *req.Longitude, *req.TimeTakenSeconds)
	if err != nil {
		gameError(c, err)
		return
	}

	middleware.AnswersScored.WithLabelValues(string(result.Session.GameMode)).Inc()
	event := ws.SessionEvent{
		Type:    ws.EventAnswerScored,
		Session: ws.Snapshot(result.Session),
		Question: &ws.QuestionProgress{
			QuestionOrder: result.Question.QuestionOrder,
			Score:         result.Question.Score,
			DistanceKm:    result.Question.DistanceKm,
		},
	}
	if result.Session.Status == domain.GameStatusCompleted {
		event.Type = ws.EventSessionCompleted
		middleware.SessionsFinished.WithLabelValues(string(domain.GameStatusCompleted)).Inc()
	}
	h.Feed.Publish(memberID, event)

	c.JSON(http.StatusOK, gin.H{
		"question": newAnsweredQuestionResponse(result.Question),
		"session":  newSessionResponse(result.Session),
	})
}

// GiveUp abandons the caller's in-progress session
func (h *Handler) GiveUp(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
		return
	}
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := h.GameService.GiveUp(c.Request.Context(), sessionID, memberID)
	if err != nil {
		gameError(c, err)
		return
	}

	middleware.SessionsFinished.WithLabelValues(string(domain.GameStatusGivenUp)).Inc()
	h.Feed.Publish(memberID, ws.SessionEvent{
		Type:    ws.EventSessionGivenUp,
		Session: ws.Snapshot(session),
	})

	c.JSON(http.StatusOK, newSessionResponse(session))
}

// GetSession returns one of the caller's sessions
func (h *Handler) GetSession(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
		return
	}
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := h.GameService.GetSession(c.Request.Context(), sessionID, memberID)
	if err != nil {
		gameError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}

// ListSessions pages through the caller's sessions (last_id cursor)
func (h *Handler) ListSessions(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
		return
	}

	var mode *domain.GameMode
	if v := c.Query("mode"); v != "" {
		m := domain.GameMode(v)
		mode = &m
	}
	lastID, _ := strconv.ParseInt(c.DefaultQuery("last_id", "0"), 10, 64)
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	sessions, err := h.GameService.ListSessions(c.Request.Context(), memberID, mode, lastID, pageSize)
	if err != nil {
		gameError(c, err)
		return
	}

	items := make([]SessionResponse, 0, len(sessions))
	var nextCursor int64
	for _, s := range sessions {
		items = append(items, newSessionResponse(s))
		nextCursor = s.ID
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": items,
		"last_id":  nextCursor,
	})
}

// SessionQuestions reviews an owned session. Unanswered questions keep
// their ground truth withheld even here.
func (h *Handler) SessionQuestions(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
		return
	}
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	questions, err := h.GameService.SessionQuestions(c.Request.Context(), sessionID, memberID)
	if err != nil {
		gameError(c, err)
		return
	}

	items := make([]any, 0, len(questions))
	for _, q := range questions {
		if q.Answered() {
			items = append(items, newAnsweredQuestionResponse(q))
		} else {
			items = append(items, newQuestionResponse(q, 0, 0))
		}
	}
	c.JSON(http.StatusOK, gin.H{"questions": items})
}

// Modes returns the active per-mode configuration
func (h *Handler) Modes(c *gin.Context) {
	settings, err := h.GameService.ActiveSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	modes := make([]gin.H, 0, len(settings))
	for _, s := range settings {
		modes = append(modes, gin.H{
			"game_mode":                      s.GameMode,
			"max_questions":                  s.MaxQuestions,
			"time_limit_seconds":             s.TimeLimitSeconds,
			"max_distance_for_full_score_km": s.MaxDistanceForFullScoreKm,
		})
	}
	c.JSON(http.StatusOK, gin.H{"modes": modes})
}

// MyStats summarises the caller's finished games
func (h *Handler) MyStats(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
		return
	}

	stats, err := h.GameService.MemberStats(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
