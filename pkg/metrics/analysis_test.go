package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAnalysisMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalysisMetrics(reg)

	m.ObserveModelCall("analyze", 250*time.Millisecond)
	m.ObserveModelCall("chat", 100*time.Millisecond)
	m.IncAnalyses()
	m.IncFallbacks()
	m.IncChats()

	if got := testutil.ToFloat64(m.analyses); got != 1 {
		t.Fatalf("expected analyses=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.fallbacks); got != 1 {
		t.Fatalf("expected fallbacks=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.chats); got != 1 {
		t.Fatalf("expected chats=1, got %f", got)
	}

	count, err := testutil.GatherAndCount(reg, "vision_model_duration_seconds")
	if err != nil {
		t.Fatalf("gather histogram: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 labeled histogram series, got %d", count)
	}
}

func TestAnalysisMetricsDefaultsEmptyOp(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalysisMetrics(reg)

	m.ObserveModelCall("", time.Second)

	count, err := testutil.GatherAndCount(reg, "vision_model_duration_seconds")
	if err != nil {
		t.Fatalf("gather histogram: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 histogram series, got %d", count)
	}
}

func TestAnalysisMetricsNilSafe(t *testing.T) {
	for _, m := range []*AnalysisMetrics{nil, NewAnalysisMetrics(nil)} {
		m.ObserveModelCall("analyze", time.Second)
		m.IncAnalyses()
		m.IncFallbacks()
		m.IncChats()
	}
}
