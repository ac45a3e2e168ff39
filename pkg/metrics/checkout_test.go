package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)

	metrics.IncTick("pending")
	metrics.IncTick("pending")
	metrics.IncTick("paid")
	metrics.IncOutcome("success")
	metrics.ObserveDuration("success", 9*time.Second)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_poll_ticks", "result", "pending"); err != nil {
		t.Fatalf("fetch ticks: %v", err)
	} else if got != 2 {
		t.Fatalf("expected pending ticks=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_outcomes", "outcome", "success"); err != nil {
		t.Fatalf("fetch outcomes: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "checkout_poll_duration_seconds", "outcome", "success"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var metrics *CheckoutMetrics
	metrics.IncTick("pending")
	metrics.IncOutcome("failed")
	metrics.ObserveDuration("failed", time.Second)

	empty := NewCheckoutMetrics(nil)
	empty.IncTick("")
	empty.IncOutcome("")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(pairs []*dto.LabelPair, label, value string) bool {
	for _, pair := range pairs {
		if pair.GetName() == label && pair.GetValue() == value {
			return true
		}
	}
	return false
}
