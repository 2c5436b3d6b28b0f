package metrics

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Terminal outcomes of one pipeline pass.
const (
	OutcomeSkippedMissingMint      = "skipped_missing_mint"
	OutcomeSkippedMissingMarketCap = "skipped_missing_market_cap"
	OutcomeFilteredOut             = "filtered_out"
	OutcomeDelivered               = "delivered"
	OutcomeEnrichmentFailed        = "enrichment_failed"
	OutcomeDeliveryFailed          = "delivery_failed"
)

type Metrics struct {
	registry *prometheus.Registry

	eventsReceivedCounter prometheus.Counter
	outcomesCounter       *prometheus.CounterVec
	webhookBatchesCounter *prometheus.CounterVec
}

// NewMetrics registers the pipeline metrics on a private registry.
func NewMetrics(namespace string) *Metrics {
	namespace = strings.ReplaceAll(namespace, "-", "_")
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := Metrics{
		registry: registry,
		eventsReceivedCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_events_received_total", namespace),
			Help: "Inbound transaction events that entered the pipeline",
		}),
		outcomesCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_event_outcomes_total", namespace),
			Help: "Terminal outcome of each processed event",
		}, []string{"outcome"}),
		webhookBatchesCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_webhook_requests_total", namespace),
			Help: "Webhook deliveries by response status",
		}, []string{"status"}),
	}
	return &m
}

func (metrics *Metrics) IncEventsReceived() {
	metrics.eventsReceivedCounter.Inc()
}

func (metrics *Metrics) IncOutcome(outcome string) {
	metrics.outcomesCounter.WithLabelValues(outcome).Inc()
}

func (metrics *Metrics) IncWebhookRequest(status int) {
	metrics.webhookBatchesCounter.WithLabelValues(fmt.Sprint(status)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}

// OutcomeCount reads the current value of one outcome counter.
func (metrics *Metrics) OutcomeCount(outcome string) float64 {
	return counterValue(metrics.outcomesCounter.WithLabelValues(outcome))
}

func (metrics *Metrics) EventsReceived() float64 {
	return counterValue(metrics.eventsReceivedCounter)
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
