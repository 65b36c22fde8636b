package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisMetrics records metadata for the vision-model pipeline.
type AnalysisMetrics struct {
	modelDuration *prometheus.HistogramVec
	analyses      prometheus.Counter
	fallbacks     prometheus.Counter
	chats         prometheus.Counter
}

// NewAnalysisMetrics registers the pipeline metrics on the provided registerer.
func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	if reg == nil {
		return &AnalysisMetrics{}
	}
	modelDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vision_model_duration_seconds",
		Help:    "Duration of vision model calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	analyses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outfit_analyses_total",
		Help: "Completed outfit analyses, fallback results included.",
	})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outfit_analysis_fallbacks_total",
		Help: "Analyses that substituted the fallback result for an unparseable model reply.",
	})
	chats := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stylist_chat_turns_total",
		Help: "Stylist chat turns served.",
	})
	reg.MustRegister(modelDuration, analyses, fallbacks, chats)
	return &AnalysisMetrics{
		modelDuration: modelDuration,
		analyses:      analyses,
		fallbacks:     fallbacks,
		chats:         chats,
	}
}

// ObserveModelCall records the duration of one model invocation.
func (m *AnalysisMetrics) ObserveModelCall(op string, duration time.Duration) {
	if m == nil || m.modelDuration == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	m.modelDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// IncAnalyses increments the completed-analyses counter.
func (m *AnalysisMetrics) IncAnalyses() {
	if m == nil || m.analyses == nil {
		return
	}
	m.analyses.Inc()
}

// IncFallbacks increments the fallback-substitution counter.
func (m *AnalysisMetrics) IncFallbacks() {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.Inc()
}

// IncChats increments the chat-turn counter.
func (m *AnalysisMetrics) IncChats() {
	if m == nil || m.chats == nil {
		return
	}
	m.chats.Inc()
}
