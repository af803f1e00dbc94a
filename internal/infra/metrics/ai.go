package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiTokensIn,
		aiTokensOut,
		aiCallsLatencyMs,
	)
}

var (
	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "Summarization call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000, 60000},
		},
		[]string{"provider", "model", "success"},
	)
)

// ObserveAICall records one completion request.
func ObserveAICall(provider, model string, tokensIn, tokensOut int64, elapsed time.Duration, success bool) {
	lbl := []string{norm(provider), norm(model)}
	if tokensIn > 0 {
		aiTokensIn.WithLabelValues(lbl...).Add(float64(tokensIn))
	}
	if tokensOut > 0 {
		aiTokensOut.WithLabelValues(lbl...).Add(float64(tokensOut))
	}
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}
