package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the instrumentation shared by the ranking and ingestion paths.
// The registerer is injected so tests can use throwaway registries.
type Metrics struct {
	RecommendationRequests prometheus.Counter
	RecommendationLatency  prometheus.Histogram
	ColdStartRequests      prometheus.Counter
	FeedbackSubmitted      prometheus.Counter
	FeedbackErrors         *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecommendationRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamerec_recommendation_requests_total",
			Help: "Total number of recommendation requests",
		}),
		RecommendationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gamerec_recommendation_duration_seconds",
			Help:    "Recommendation request latency",
			Buckets: prometheus.DefBuckets,
		}),
		ColdStartRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamerec_recommendation_cold_start_total",
			Help: "Recommendation requests served with cold-start weighting",
		}),
		FeedbackSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamerec_feedback_submitted_total",
			Help: "Total number of accepted feedback submissions",
		}),
		FeedbackErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gamerec_feedback_errors_total",
			Help: "Feedback ingestion failures by stage",
		}, []string{"stage"}),
	}
}
