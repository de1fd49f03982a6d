package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	eventLogin          = "login"
	eventSessionResolve = "session_resolve"
	eventVerify         = "verify"
	eventResend         = "resend"
)

var authEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "turva_auth_events_total",
		Help: "Authentication and verification events by outcome",
	},
	[]string{"event", "outcome"},
)

func recordAuthEvent(event, outcome string) {
	authEvents.WithLabelValues(event, outcome).Inc()
}
