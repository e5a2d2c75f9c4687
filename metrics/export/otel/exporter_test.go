package otel

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	mormotauth "github.com/restforge/mormotauth"
)

type fakeSource struct {
	snapshot mormotauth.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() mormotauth.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                        { return f.dropped }

func TestExporterRegistersAndCollects(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	source := &fakeSource{
		snapshot: mormotauth.MetricsSnapshot{Counters: map[mormotauth.MetricID]uint64{
			mormotauth.MetricLoginSuccess: 4,
			mormotauth.MetricRequests:     11,
		}},
		dropped: 1,
	}

	exporter, err := NewExporterFromSource(provider.Meter("test"), source)
	if err != nil {
		t.Fatalf("NewExporterFromSource: %v", err)
	}
	defer func() { _ = exporter.Close() }()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) == 0 {
				continue
			}
			got[m.Name] = sum.DataPoints[0].Value
		}
	}

	checks := map[string]int64{
		"mormotauth_login_success_total": 4,
		"mormotauth_requests_total":      11,
		"mormotauth_nonce_fetch_total":   0,
		"mormotauth_audit_dropped_total": 1,
	}
	for name, want := range checks {
		if got[name] != want {
			t.Errorf("%s = %d, want %d", name, got[name], want)
		}
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	provider := metric.NewMeterProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	if _, err := NewExporterFromSource(nil, &fakeSource{}); !errors.Is(err, ErrNilMeter) {
		t.Fatalf("nil meter: got %v", err)
	}
	if _, err := NewExporterFromSource(provider.Meter("test"), nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil source: got %v", err)
	}
	if _, err := NewExporter(provider.Meter("test"), nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil client: got %v", err)
	}
}

func TestExporterCloseNilSafe(t *testing.T) {
	var e *Exporter
	if err := e.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
