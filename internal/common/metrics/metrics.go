// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total number of chat messages processed, by scope",
		},
		[]string{"scope"},
	)

	ChatCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_commands_total",
			Help: "Total number of recognized status-update commands, by outcome",
		},
		[]string{"outcome"},
	)

	ChatCommandFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_command_failures_total",
			Help: "Total number of failed status-update commands, by error code",
		},
		[]string{"error_code"},
	)

	ChatPipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "chat_pipeline_duration_seconds",
			Help: "Duration of the full chat message pipeline in seconds",
		},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "store_operation_duration_seconds",
			Help: "Duration of record store operations in seconds",
		},
		[]string{"store", "operation"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route"},
	)
)
