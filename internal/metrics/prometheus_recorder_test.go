package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("scan_inventory", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("scan_inventory", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.SetVehicles(5, 2)
	pr.IncPageInjection("home", false)
	pr.IncDetailPage(DetailUnchanged)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"lotbuilder_stage_duration_seconds",
		"lotbuilder_build_duration_seconds",
		"lotbuilder_stage_results_total",
		"lotbuilder_build_outcomes_total",
		"lotbuilder_vehicles",
		"lotbuilder_page_injections_total",
		"lotbuilder_detail_pages_total",
	} {
		assert.True(t, names[want], want)
	}
}

func TestPrometheusRecorderWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetVehicles(4, 1)
	pr.IncBuildOutcome("warning")

	path := filepath.Join(t.TempDir(), "lotbuilder.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `lotbuilder_vehicles{status="sold"} 1`)
	assert.Contains(t, text, `lotbuilder_vehicles{status="available"} 3`)
	assert.Contains(t, text, `lotbuilder_build_outcomes_total{outcome="warning"} 1`)
}
