// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLMCalls counts text-generation calls by outcome (ok, error).
	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asha",
		Name:      "llm_calls_total",
		Help:      "Text generation calls by outcome.",
	}, []string{"outcome"})

	// ProviderAttempts counts opportunity provider scrapes by provider and outcome (ok, empty, error).
	ProviderAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asha",
		Name:      "provider_attempts_total",
		Help:      "Opportunity provider attempts by provider and outcome.",
	}, []string{"provider", "outcome"})

	// OpportunityFallbacks counts searches answered by the generated fallback.
	OpportunityFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asha",
		Name:      "opportunity_fallbacks_total",
		Help:      "Opportunity searches that fell back to generated suggestions.",
	}, []string{"category"})

	// BiasChecks counts message bias screenings by outcome (clear, flagged, error).
	BiasChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asha",
		Name:      "bias_checks_total",
		Help:      "Bias screenings of chat messages by outcome.",
	}, []string{"outcome"})

	// FeedbackRatings counts submitted reply ratings.
	FeedbackRatings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asha",
		Name:      "feedback_ratings_total",
		Help:      "Feedback submissions by rating.",
	}, []string{"rating"})

	// ChatReplies counts replies by responder path.
	ChatReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asha",
		Name:      "chat_replies_total",
		Help:      "Chat replies by responder path.",
	}, []string{"path"})
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)
