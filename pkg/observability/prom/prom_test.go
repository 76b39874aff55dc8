package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/listgraph/pkg/observability"
)

// value returns the counter or gauge value, or the histogram sample count, of
// the sample of name carrying labels.
func value(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("no sample %s%v", name, labels)
	return 0
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	ctx := context.Background()

	m.OnHighlight("lock", 4, 3)
	m.OnHighlight("lock", 2, 1)
	m.OnLock("lib", true)
	m.OnLock("lib", false)
	m.OnLock("app", true)
	m.OnRoot("lib", true)
	m.OnQuery("lib", "or")
	m.OnLoad(ctx, "file:deps.yaml", 10, 3, 20*time.Millisecond, nil)
	m.OnLoad(ctx, "file:deps.yaml", 0, 0, time.Millisecond, errors.New("boom"))
	m.OnCacheHit(ctx, "svg")
	m.OnCacheMiss(ctx, "svg")
	m.OnCacheSet(ctx, "svg", 512)
	m.OnResponse(ctx, "GET", "/workspaces/{id}", 200, time.Millisecond)

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"listgraph_highlights_total", map[string]string{"class": "lock"}, 2},
		{"listgraph_highlight_nodes", map[string]string{"class": "lock"}, 2},
		{"listgraph_lock_changes_total", map[string]string{"action": "lock"}, 2},
		{"listgraph_lock_changes_total", map[string]string{"action": "unlock"}, 1},
		{"listgraph_root_changes_total", map[string]string{"action": "root"}, 1},
		{"listgraph_query_changes_total", map[string]string{"mode": "or"}, 1},
		{"listgraph_loads_total", map[string]string{"source": "file:deps.yaml", "result": "ok"}, 1},
		{"listgraph_loads_total", map[string]string{"source": "file:deps.yaml", "result": "error"}, 1},
		{"listgraph_loaded_nodes", map[string]string{"source": "file:deps.yaml", "kind": "clone"}, 3},
		{"listgraph_loaded_nodes", map[string]string{"source": "file:deps.yaml", "kind": "regular"}, 7},
		{"listgraph_cache_lookups_total", map[string]string{"key_type": "svg", "result": "hit"}, 1},
		{"listgraph_cache_stored_bytes_total", map[string]string{"key_type": "svg"}, 512},
		{"listgraph_http_requests_total", map[string]string{"method": "GET", "route": "/workspaces/{id}", "status": "200"}, 1},
	}
	for _, tt := range tests {
		if got := value(t, reg, tt.name, tt.labels); got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	m := New(prometheus.NewRegistry())
	m.Install()

	if observability.Interaction() != m || observability.Load() != m ||
		observability.Cache() != m || observability.HTTP() != m {
		t.Error("Install did not register every hook")
	}
}
