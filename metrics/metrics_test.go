package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResourcesSpawnedIncrements(t *testing.T) {
	tests := []struct {
		name  string
		label string
	}{
		{"bronze", "bronze"},
		{"iron", "iron"},
		{"gold", "gold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ResourcesSpawned.WithLabelValues(tt.label))
			ResourcesSpawned.WithLabelValues(tt.label).Add(3)
			after := testutil.ToFloat64(ResourcesSpawned.WithLabelValues(tt.label))
			if after-before != 3 {
				t.Fatalf("expected increment by 3, got %v", after-before)
			}
		})
	}
}

func TestStatsOperationDurationObserves(t *testing.T) {
	StatsOperationDuration.Observe(0.01)
	if count := testutil.CollectAndCount(StatsOperationDuration); count != 1 {
		t.Fatalf("expected one collected metric, got %d", count)
	}
}
