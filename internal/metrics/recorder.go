package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// DetailLabel enumerates what happened to a detail page.
type DetailLabel string

const (
	DetailWritten   DetailLabel = "written"
	DetailUnchanged DetailLabel = "unchanged"
	DetailPruned    DetailLabel = "pruned"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // success|warning|failed|canceled
	SetVehicles(total, sold int)
	IncPageInjection(slot string, injected bool)
	IncDetailPage(result DetailLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) SetVehicles(int, int)                       {}
func (NoopRecorder) IncPageInjection(string, bool)              {}
func (NoopRecorder) IncDetailPage(DetailLabel)                  {}
