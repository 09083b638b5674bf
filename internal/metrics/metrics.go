package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BotMetrics exposes counters/histograms for the conversation pipeline.
type BotMetrics struct {
	inboundTotal  *prometheus.CounterVec
	actionsTotal  *prometheus.CounterVec
	lookupLatency *prometheus.HistogramVec
	outboundTotal *prometheus.CounterVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubbot",
			Subsystem: "messaging",
			Name:      "inbound_total",
			Help:      "Total inbound events by channel",
		}, []string{"channel", "status"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubbot",
			Subsystem: "router",
			Name:      "actions_total",
			Help:      "Routed actions by matching rule and action kind",
		}, []string{"rule", "kind"}),
		lookupLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clubbot",
			Subsystem: "lookup",
			Name:      "latency_seconds",
			Help:      "Latency of data lookups including the sheet fetch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "outcome"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubbot",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total outbound replies and pushes",
		}, []string{"channel", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.actionsTotal, m.lookupLatency, m.outboundTotal)
	return m
}

func (m *BotMetrics) ObserveInbound(channel, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(channel, status).Inc()
}

func (m *BotMetrics) ObserveAction(rule, kind string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(rule, kind).Inc()
}

func (m *BotMetrics) ObserveLookup(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lookupLatency.WithLabelValues(kind, outcome).Observe(elapsed.Seconds())
}

func (m *BotMetrics) ObserveOutbound(channel, status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(channel, status).Inc()
}
