package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.OnRunComplete(ctx, "a", 10, 2, time.Millisecond, nil)
	m.OnRunComplete(ctx, "b", 0, 0, time.Millisecond, errors.New("boom"))
	m.OnPlanComputed(ctx, 6, 1, true, time.Millisecond)
	m.OnStageComplete(ctx, "units", 6, 1, time.Millisecond)
	m.OnCacheHit(ctx, "plan")
	m.OnCacheSet(ctx, "plan", 512)
	m.OnRequest(ctx, "POST", "/v1/plan")
	m.OnResponse(ctx, "POST", "/v1/plan", 200, time.Millisecond)

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"patchplan_runs_total", map[string]string{"result": "ok"}, 1},
		{"patchplan_runs_total", map[string]string{"result": "error"}, 1},
		{"patchplan_plans_total", map[string]string{"source": "cache"}, 1},
		{"patchplan_stage_placed_total", map[string]string{"stage": "units"}, 6},
		{"patchplan_stage_skipped_total", map[string]string{"stage": "units"}, 1},
		{"patchplan_cache_operations_total", map[string]string{"op": "hit"}, 1},
		{"patchplan_cache_written_bytes_total", nil, 512},
		{"patchplan_http_requests_total", map[string]string{"status": "200"}, 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, reg, tt.name, tt.labels); got != tt.want {
			t.Errorf("%s%v = %g, want %g", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestNewWithoutRegistry(t *testing.T) {
	m := New(nil)
	m.OnStageComplete(context.Background(), "relays", 1, 0, time.Millisecond)
}
