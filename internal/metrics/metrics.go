package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusfeed_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campusfeed_http_request_duration_seconds",
			Help:    "Latency of HTTP request handling in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	realtimeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "campusfeed_realtime_connections",
			Help: "Number of currently connected realtime clients.",
		},
	)

	realtimeBroadcastsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campusfeed_realtime_broadcasts_total",
			Help: "Total number of chat messages broadcast.",
		},
	)

	realtimeDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campusfeed_realtime_dropped_total",
			Help: "Deliveries skipped because a client's outbound buffer was full.",
		},
	)

	activityPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusfeed_activity_events_published_total",
			Help: "Activity events handed to the broker, by type and result.",
		},
		[]string{"type", "result"},
	)

	activityConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusfeed_activity_events_consumed_total",
			Help: "Activity events consumed by the worker, by type.",
		},
		[]string{"type"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		realtimeConnections,
		realtimeBroadcastsTotal,
		realtimeDroppedTotal,
		activityPublishedTotal,
		activityConsumedTotal,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordHTTPRequest(route, method string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func ConnectionOpened() { realtimeConnections.Inc() }

func ConnectionClosed() { realtimeConnections.Dec() }

func MessageBroadcast() { realtimeBroadcastsTotal.Inc() }

func DeliveryDropped() { realtimeDroppedTotal.Inc() }

func RecordPublish(eventType string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	activityPublishedTotal.WithLabelValues(eventType, result).Inc()
}

func RecordConsumed(eventType string) {
	activityConsumedTotal.WithLabelValues(eventType).Inc()
}
