package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		sessionsCreated,
		activeSessions,
		chatTurns,
		completionLatencyMs,
		completionPromptTokens,
		snapshots,
		snapshotRows,
	)
}

// Turn outcomes.
const (
	TurnSuccess        = "success"
	TurnFallback       = "fallback"
	TurnInvalidSession = "invalid_session"
	TurnEmptyMessage   = "empty_message"
	TurnRateLimited    = "rate_limited"
)

// Snapshot triggers.
const (
	TriggerAuto     = "auto"
	TriggerManual   = "manual"
	TriggerShutdown = "shutdown"
)

var (
	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aria_sessions_created_total",
			Help: "Chat sessions initialized since process start.",
		},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aria_active_sessions",
			Help: "Sessions resident in memory.",
		},
	)

	chatTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aria_chat_turns_total",
			Help: "Chat turns by outcome (success/fallback/invalid_session/empty_message/rate_limited).",
		},
		[]string{"outcome"},
	)

	completionLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aria_completion_latency_ms",
			Help:    "Completion call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		},
		[]string{"provider", "model", "success"},
	)

	completionPromptTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aria_completion_prompt_tokens",
			Help:    "Estimated prompt tokens per completion call.",
			Buckets: prometheus.ExponentialBuckets(128, 2, 8),
		},
		[]string{"provider", "model"},
	)

	snapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aria_snapshots_total",
			Help: "Transcript snapshots by trigger (auto/manual/shutdown) and result.",
		},
		[]string{"trigger", "success"},
	)

	snapshotRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aria_snapshot_rows_total",
			Help: "Rows appended to the flattened transcript export.",
		},
	)
)

func SessionCreated(active int) {
	sessionsCreated.Inc()
	activeSessions.Set(float64(active))
}

func IncTurn(outcome string) {
	chatTurns.WithLabelValues(norm(outcome)).Inc()
}

func ObserveCompletion(provider, model string, elapsed time.Duration, success bool) {
	completionLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func ObservePromptTokens(provider, model string, tokens int) {
	completionPromptTokens.WithLabelValues(norm(provider), norm(model)).Observe(float64(tokens))
}

func IncSnapshot(trigger string, success bool) {
	snapshots.WithLabelValues(norm(trigger), strconv.FormatBool(success)).Inc()
}

func AddSnapshotRows(n int) {
	snapshotRows.Add(float64(n))
}
