package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	contentOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_store_operations_total",
			Help: "Total number of content store operations",
		},
		[]string{"collection", "operation", "status"},
	)

	contentOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_store_operation_duration_seconds",
			Help:    "Duration of content store operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"collection", "operation"},
	)

	feedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of assembled feed requests",
		},
		[]string{"feed", "status"},
	)
)

// RecordContentOperation учитывает один вызов документного хранилища
func RecordContentOperation(collection, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	contentOperationsTotal.WithLabelValues(collection, operation, status).Inc()
	contentOperationDuration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
}

// RecordFeedRequest учитывает сборку одной ленты. Принимает указатель
// на ошибку, чтобы вызываться через defer до возврата.
func RecordFeedRequest(feed string, errp *error) {
	status := "ok"
	if errp != nil && *errp != nil {
		status = "error"
	}
	feedRequestsTotal.WithLabelValues(feed, status).Inc()
}

// StartServer поднимает HTTP-сервер с /metrics и /health
func StartServer(addr string) {
	if addr == "" {
		addr = ":9091"
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		log.Println("Starting metrics server at", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
}
