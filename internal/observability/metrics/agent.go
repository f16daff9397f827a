// Package metrics exposes prometheus instrumentation for the agent loop.
// AgentMetrics doubles as a run-event publisher so the core stays free of
// prometheus imports; bootstrap fans run events out to it alongside the
// queue publisher.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/discord-research-agent/internal/core/domain"
)

type AgentMetrics struct {
	registry *prometheus.Registry
	service  string

	runsTotal      *prometheus.CounterVec
	iterations     *prometheus.HistogramVec
	toolCallsTotal *prometheus.CounterVec
}

func NewAgentMetrics(service string) *AgentMetrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dra",
			Subsystem: "agent",
			Name:      "runs_total",
			Help:      "Total completed agent loop invocations by outcome.",
		},
		[]string{"service", "outcome"},
	)
	iterations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dra",
			Subsystem: "agent",
			Name:      "iterations",
			Help:      "Distribution of oracle steps per loop invocation.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
		[]string{"service"},
	)
	toolCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dra",
			Subsystem: "agent",
			Name:      "tool_calls_total",
			Help:      "Total tool calls performed by the agent.",
		},
		[]string{"service", "tool", "status"},
	)

	registry.MustRegister(runsTotal, iterations, toolCallsTotal)

	return &AgentMetrics{
		registry:       registry,
		service:        service,
		runsTotal:      runsTotal,
		iterations:     iterations,
		toolCallsTotal: toolCallsTotal,
	}
}

func (m *AgentMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// PublishRunEvent implements ports.RunEventPublisher.
func (m *AgentMetrics) PublishRunEvent(_ context.Context, event domain.RunEvent) error {
	m.runsTotal.WithLabelValues(m.service, string(event.Outcome)).Inc()
	if event.Iterations > 0 {
		m.iterations.WithLabelValues(m.service).Observe(float64(event.Iterations))
	}
	for _, tool := range event.ToolEvents {
		m.toolCallsTotal.WithLabelValues(m.service, string(tool.Tool), tool.Status).Inc()
	}
	return nil
}
