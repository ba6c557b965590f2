package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	Submissions   *prometheus.CounterVec
	Warnings      *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	OutboxEvents  *prometheus.CounterVec
	SubmitLatency prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_submissions_total",
		Help: "Order submissions by terminal outcome.",
	}, []string{"outcome"})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_warnings_total",
		Help: "Non-fatal pipeline failures by kind and step.",
	}, []string{"kind", "step"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_notifications_total",
		Help: "Fulfillment notifications by result.",
	}, []string{"result"})
	outboxEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_outbox_events_total",
		Help: "Outbox relay results.",
	}, []string{"relay", "result"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_submit_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(submissions, warnings, notifications, outboxEvents, latency)
	return &Registry{
		reg:           r,
		Submissions:   submissions,
		Warnings:      warnings,
		Notifications: notifications,
		OutboxEvents:  outboxEvents,
		SubmitLatency: latency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
