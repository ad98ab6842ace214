package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicedemo_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voicedemo_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ConnectionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicedemo_connections_issued_total",
		Help: "Connection details successfully issued",
	}, []string{"demo"})

	ConnectionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicedemo_connection_errors_total",
		Help: "Connection bootstraps that failed, by reason",
	}, []string{"demo", "reason"})

	AgentDispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicedemo_agent_dispatch_total",
		Help: "Agent dispatch attempts by outcome",
	}, []string{"demo", "agent", "outcome"})

	AgentDispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voicedemo_agent_dispatch_duration_seconds",
		Help:    "Room registration plus agent dispatch duration",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"demo"})

	SessionRecordErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicedemo_session_record_errors_total",
		Help: "Session ledger writes that failed",
	})
)
