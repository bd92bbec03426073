package metrics

import (
	"net/http"
	"primarycare-identity-service/internal/app/contracts"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "primarycare_identity"

type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	GatewayCallsTotal    *prometheus.CounterVec
	GatewayCallDuration  *prometheus.HistogramVec
	OfflineTransactions  *prometheus.CounterVec
	ProvisionalUpisTotal prometheus.Counter
	ProxyFallbacksTotal  *prometheus.CounterVec
	ResolutionsTotal     *prometheus.CounterVec
}

// NewCollector registers on a private registry so that several collectors can coexist in tests.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "route"}),

		GatewayCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Outbound gateway calls by target and outcome.",
		}, []string{"target", "outcome"}),

		GatewayCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Outbound gateway call latency distribution.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"target"}),

		OfflineTransactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offline_queue",
			Name:      "transactions_enqueued_total",
			Help:      "Deferred remote writes by transaction type.",
		}, []string{"type"}),

		ProvisionalUpisTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upid",
			Name:      "provisional_issued_total",
			Help:      "Provisional UPIs issued while the population registry was unavailable.",
		}),

		ProxyFallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "identifier_fallbacks_total",
			Help:      "Identifier search fallback retries by result.",
		}, []string{"result"}),

		ResolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolution",
			Name:      "results_total",
			Help:      "Identifier resolutions by origin rank.",
		}, []string{"origin_rank"}),
	}
}

var _ contracts.GatewayMetrics = (*Collector)(nil)

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveGatewayCall(target, outcome string, duration time.Duration) {
	c.GatewayCallsTotal.WithLabelValues(target, outcome).Inc()
	c.GatewayCallDuration.WithLabelValues(target).Observe(duration.Seconds())
}

func (c *Collector) ObserveRequest(method, route, status string, duration time.Duration) {
	c.RequestsTotal.WithLabelValues(method, route, status).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) IncOfflineTransaction(transactionType string) {
	c.OfflineTransactions.WithLabelValues(transactionType).Inc()
}

func (c *Collector) IncProvisionalUpi() {
	c.ProvisionalUpisTotal.Inc()
}

func (c *Collector) IncProxyFallback(result string) {
	c.ProxyFallbacksTotal.WithLabelValues(result).Inc()
}

func (c *Collector) IncResolution(originRank string) {
	c.ResolutionsTotal.WithLabelValues(originRank).Inc()
}

// Nop discards everything. Used where no collector is wired.
type Nop struct{}

func (Nop) ObserveGatewayCall(string, string, time.Duration) {}
func (Nop) IncOfflineTransaction(string)                     {}
func (Nop) IncProvisionalUpi()                               {}
func (Nop) IncProxyFallback(string)                          {}
func (Nop) IncResolution(string)                             {}
