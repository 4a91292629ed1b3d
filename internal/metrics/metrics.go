package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookshelf_api_requests_total",
		Help: "Total number of requests sent to the books API",
	}, []string{"method", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookshelf_api_request_duration_seconds",
		Help:    "Duration of books API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookshelf_notifications_total",
		Help: "Notifications shown to the user",
	}, []string{"kind"})
)
