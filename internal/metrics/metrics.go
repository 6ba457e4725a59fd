package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK            = "ok"
	OutcomeFallback      = "fallback"
	OutcomeUpstreamError = "upstream_error"
	OutcomeBadRequest    = "bad_request"
)

type Metrics struct {
	registry        *prometheus.Registry
	chatRequests    *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
}

// New registers the relay collectors on a private registry so several
// instances (one per test app) can coexist.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome.",
		}, []string{"outcome"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "relay",
			Name:      "gemini_request_duration_seconds",
			Help:      "Latency of generateContent calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
	}

	registry.MustRegister(m.chatRequests, m.upstreamLatency)
	return m
}

func (m *Metrics) ObserveRequest(outcome string) {
	m.chatRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUpstream(d time.Duration) {
	m.upstreamLatency.Observe(d.Seconds())
}

func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
