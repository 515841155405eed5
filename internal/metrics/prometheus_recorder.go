package metrics

import (
	"errors"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "lotbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	vehicles      *prom.GaugeVec
	injections    *prom.CounterVec
	detailPages   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics. A nil
// registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.vehicles = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "vehicles",
			Help:      "Vehicles found by the last scan",
		}, []string{"status"})
		pr.injections = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_injections_total",
			Help:      "Template page injections by slot and result",
		}, []string{"slot", "result"})
		pr.detailPages = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "detail_pages_total",
			Help:      "Detail pages by result",
		}, []string{"result"})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.vehicles, pr.injections, pr.detailPages)
	})
	return pr
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.reg
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetVehicles(total, sold int) {
	if p == nil || p.vehicles == nil {
		return
	}
	p.vehicles.WithLabelValues("available").Set(float64(total - sold))
	p.vehicles.WithLabelValues("sold").Set(float64(sold))
}

func (p *PrometheusRecorder) IncPageInjection(slot string, injected bool) {
	if p == nil || p.injections == nil {
		return
	}
	res := "skipped"
	if injected {
		res = "injected"
	}
	p.injections.WithLabelValues(slot, res).Inc()
}

func (p *PrometheusRecorder) IncDetailPage(result DetailLabel) {
	if p == nil || p.detailPages == nil {
		return
	}
	p.detailPages.WithLabelValues(string(result)).Inc()
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if p == nil || p.reg == nil {
		return errors.New("metrics: recorder not initialized")
	}
	return prom.WriteToTextfile(path, p.reg)
}
