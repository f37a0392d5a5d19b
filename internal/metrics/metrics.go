// Package metrics holds the prometheus collectors of the hub.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tower"

// Ingestion sources and rejection reasons used as label values.
const (
	SourceHTTP      = "http"
	SourceMQTT      = "mqtt"
	SourceSimulator = "simulator"

	ReasonMissingFields = "missing_fields"
	ReasonInvalidBody   = "invalid_body"
)

var (
	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "server_request_duration_seconds",
			Help:      "A histogram of the latency in seconds for serving requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"},
	)

	clientDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_request_duration_seconds",
			Help:      "A histogram of the latency in seconds of requests made to the hub",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method", "host"},
	)

	// ReadingsIngested counts readings accepted into the store per source.
	ReadingsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_ingested_total",
			Help:      "Number of sensor readings accepted",
		}, []string{"source"},
	)

	// ReadingsRejected counts ingestion attempts refused before reaching the store.
	ReadingsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_rejected_total",
			Help:      "Number of sensor payloads rejected",
		}, []string{"reason"},
	)

	// HistorySize tracks how many entries the history buffer holds.
	HistorySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_size",
			Help:      "Number of readings currently retained in history",
		},
	)
)

func init() {
	prometheus.MustRegister(duration, clientDuration, ReadingsIngested, ReadingsRejected, HistorySize)
}

// Middleware records the duration of requests served by next, partitioned by
// method and status code.
func Middleware(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(duration, next)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// InstrumentRoundTripper times requests made through next, partitioned by
// status, method and host. Failed round trips are not observed.
func InstrumentRoundTripper(next http.RoundTripper) promhttp.RoundTripperFunc {
	return promhttp.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		if err == nil {
			clientDuration.With(
				prometheus.Labels{
					"code":   resp.Status,
					"method": r.Method,
					"host":   r.URL.Host,
				},
			).Observe(time.Since(start).Seconds())
		}
		return resp, err
	})
}
