package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "licensegate"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	validateTotal *prometheus.CounterVec
	webhookTotal  *prometheus.CounterVec
	cacheTotal    *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
}

// NewPrometheus creates a recorder and registers its collectors with reg.
func NewPrometheus(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		validateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validate_requests_total",
			Help:      "License validation requests by outcome.",
		}, []string{"outcome"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Payment webhook requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "License presence cache lookups by result.",
		}, []string{"result"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "License store round-trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}

	for _, c := range []prometheus.Collector{r.validateTotal, r.webhookTotal, r.cacheTotal, r.storeDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// IncValidate increments the validate counter for outcome.
func (r *PrometheusRecorder) IncValidate(outcome string) {
	r.validateTotal.WithLabelValues(outcome).Inc()
}

// IncWebhook increments the webhook counter for provider and outcome.
func (r *PrometheusRecorder) IncWebhook(provider, outcome string) {
	r.webhookTotal.WithLabelValues(provider, outcome).Inc()
}

// IncLicenseCacheHit increments the cache hit counter.
func (r *PrometheusRecorder) IncLicenseCacheHit() {
	r.cacheTotal.WithLabelValues("hit").Inc()
}

// IncLicenseCacheMiss increments the cache miss counter.
func (r *PrometheusRecorder) IncLicenseCacheMiss() {
	r.cacheTotal.WithLabelValues("miss").Inc()
}

// ObserveStoreDuration records a store round-trip.
func (r *PrometheusRecorder) ObserveStoreDuration(op string, duration time.Duration) {
	r.storeDuration.WithLabelValues(op).Observe(duration.Seconds())
}
