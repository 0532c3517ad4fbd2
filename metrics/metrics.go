// Package metrics exposes the Prometheus collectors for the core domain
// events. Handlers and services increment these directly.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veil_matches_created_total",
		Help: "Matches created, by counterpart kind.",
	})

	MatchesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veil_matches_skipped_total",
		Help: "Matches transitioned to skipped.",
	})

	Reveals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veil_reveals_total",
		Help: "Matches that reached the revealed state.",
	})

	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veil_messages_sent_total",
		Help: "Chat messages persisted, by sender kind.",
	}, []string{"sender"})

	PersonaReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veil_persona_replies_total",
		Help: "Persona replies delivered, by outcome (generated, fallback, cancelled, failed).",
	}, []string{"outcome"})

	CreditCharges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veil_credit_charges_total",
		Help: "Credit charges applied, by action kind.",
	}, []string{"action"})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
