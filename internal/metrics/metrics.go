package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	cartMutations *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
	contacts      *prometheus.CounterVec
	handoffs      prometheus.Counter
	orderRecords  *prometheus.CounterVec
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "cart_mutations_total",
			Help:      "Cart actions applied, by action kind.",
		}, []string{"action"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkout_submissions_total",
			Help:      "Checkout submissions, by outcome.",
		}, []string{"outcome"}),
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions, by outcome.",
		}, []string{"outcome"}),
		handoffs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "handoffs_total",
			Help:      "Messaging handoffs fired after their delay.",
		}),
		orderRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_records_total",
			Help:      "Order records appended, by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}

	reg.MustRegister(m.cartMutations, m.checkouts, m.contacts, m.handoffs, m.orderRecords)
	return m
}

func (m *Metrics) CartMutation(action string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(action).Inc()
}

func (m *Metrics) Checkout(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Contact(outcome string) {
	if m == nil {
		return
	}
	m.contacts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handoff() {
	if m == nil {
		return
	}
	m.handoffs.Inc()
}

func (m *Metrics) OrderRecord(sink, outcome string) {
	if m == nil {
		return
	}
	m.orderRecords.WithLabelValues(sink, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
