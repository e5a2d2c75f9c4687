package mormotauth

import (
	"sync"
	"testing"
)

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricPathsSigned)

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 2 {
		t.Errorf("login success = %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricPathsSigned] != 1 {
		t.Errorf("paths signed = %d", snap.Counters[MetricPathsSigned])
	}
	if snap.Counters[MetricRequests] != 0 {
		t.Errorf("untouched counter = %d", snap.Counters[MetricRequests])
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{})
	m.Inc(MetricRequests)
	if len(m.Snapshot().Counters) != 0 {
		t.Fatal("disabled metrics must snapshot empty")
	}
}

func TestMetricsUnknownID(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricID(9999)) // must not panic
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricRequests)
			}
		}()
	}
	wg.Wait()

	if got := m.Snapshot().Counters[MetricRequests]; got != 8000 {
		t.Fatalf("requests = %d, want 8000", got)
	}
}
