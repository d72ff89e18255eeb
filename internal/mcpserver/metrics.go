package mcpserver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz_widget",
		Subsystem: "mcp",
		Name:      "tool_calls_total",
		Help:      "MCP tool invocations by tool and outcome.",
	}, []string{"tool", "outcome"})

	toolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quiz_widget",
		Subsystem: "mcp",
		Name:      "tool_call_seconds",
		Help:      "MCP tool handler latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})
)

func observeTool(tool string, start time.Time, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	toolCalls.WithLabelValues(tool, outcome).Inc()
	toolLatency.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}
