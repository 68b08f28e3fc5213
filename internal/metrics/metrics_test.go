package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := New(reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.TickCompleted(time.Second, map[string]int{"ok": 3, "critical": 1}, 1)
	m.TickSkipped()
	m.FetchFailed("prod", "connect")

	if got := testutil.ToFloat64(m.ticks); got != 1 {
		t.Errorf("ticks_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.skipped); got != 1 {
		t.Errorf("ticks_skipped_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fetchFailures.WithLabelValues("prod", "connect")); got != 1 {
		t.Errorf("fetch_failures_total{prod,connect} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("critical")); got != 1 {
		t.Errorf("events{critical} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.unreachable); got != 1 {
		t.Errorf("unreachable_sources = %v, want 1", got)
	}
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	if _, err := New(reg); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Error("New() expected error registering twice on the same registry")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	// none of these may panic
	m.TickSkipped()
	m.FetchFailed("prod", "parse")
	m.TickCompleted(time.Second, map[string]int{"ok": 1}, 0)
}
