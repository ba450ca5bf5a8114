// Package services – pipeline metrics.
//
// Prometheus collectors for the message pipeline. Label cardinality is
// bounded: intent labels come from the fixed classifier rule table.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// pipelineMessages counts fully processed inbound messages by detected intent.
	pipelineMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_messages_total",
			Help: "Inbound messages processed by the pipeline, by detected intent.",
		},
		[]string{"intent"},
	)

	// pipelineRoutingMisses counts inbound messages with no active tenant.
	pipelineRoutingMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_routing_misses_total",
			Help: "Inbound messages dropped because no active tenant owns the routing id.",
		},
	)

	// pipelineEscalations counts new AI-to-human handoffs.
	pipelineEscalations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_escalations_total",
			Help: "Escalations opened by the pipeline.",
		},
	)

	// pipelineSendFailures counts outbound sends reported as not delivered.
	pipelineSendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_send_failures_total",
			Help: "Outbound WhatsApp sends that failed (best-effort delivery).",
		},
	)
)

func init() {
	prometheus.MustRegister(
		pipelineMessages,
		pipelineRoutingMisses,
		pipelineEscalations,
		pipelineSendFailures,
	)
}
