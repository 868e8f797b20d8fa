package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screening_sessions_created_total",
		Help: "Screening sessions started",
	})
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "screening_sessions_active",
		Help: "Screening sessions currently held in memory",
	})
	sessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screening_sessions_evicted_total",
		Help: "Idle screening sessions removed by the janitor",
	})
	cardSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screening_card_selections_total",
		Help: "Memory game card selections by outcome",
	}, []string{"outcome"})
	screeningsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screening_completed_total",
		Help: "Finished screenings by severity level",
	}, []string{"level"})
	advisoryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screening_advisory_requests_total",
		Help: "Commentary requests by provider and status",
	}, []string{"provider", "status"})
	eventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screening_event_publish_failures_total",
		Help: "Domain events that could not be published",
	})
	scanAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screening_scan_analyses_total",
		Help: "Scan analysis requests by status",
	}, []string{"status"})
)
