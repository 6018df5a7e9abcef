package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)

	QuestionsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_questions_issued_total",
			Help: "Questions issued, by game mode",
		},
		[]string{"mode"},
	)
	AnswersScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_answers_scored_total",
			Help: "Answers accepted and scored, by game mode",
		},
		[]string{"mode"},
	)
	SessionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_sessions_finished_total",
			Help: "Sessions that reached a terminal status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests)
	prometheus.MustRegister(RLBlocked)
	prometheus.MustRegister(QuestionsIssued)
	prometheus.MustRegister(AnswersScored)
	prometheus.MustRegister(SessionsFinished)
}
