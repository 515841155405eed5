package site

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lotbuilder/internal/inject"
	"git.home.luguber.info/inful/lotbuilder/internal/metrics"
)

func TestDeriveOutcome(t *testing.T) {
	r := NewBuildReport(fixedNow)
	r.DeriveOutcome()
	assert.Equal(t, OutcomeSuccess, r.Outcome)

	r.AddIssue(IssueMarkerNotFound, StageInjectPages, SeverityWarning, "skipped", errors.New("skipped"))
	r.DeriveOutcome()
	assert.Equal(t, OutcomeWarning, r.Outcome)

	r.AddIssue(IssueGenericStageError, StageScanInventory, SeverityError, "boom", NewFatalStageError(StageScanInventory, errors.New("boom")))
	r.DeriveOutcome()
	assert.Equal(t, OutcomeFailed, r.Outcome)

	c := NewBuildReport(fixedNow)
	c.AddIssue(IssueCanceled, StageScanInventory, SeverityError, "canceled", NewCanceledStageError(StageScanInventory, errors.New("ctx")))
	c.DeriveOutcome()
	assert.Equal(t, OutcomeCanceled, c.Outcome)
}

func TestClassifyStageResult(t *testing.T) {
	out := ClassifyStageResult(StageInjectPages, nil)
	assert.Equal(t, StageResultSuccess, out.Result)
	assert.False(t, out.Abort)

	warn := NewWarnStageError(StageInjectPages, errors.Join(inject.ErrMarkerNotFound))
	out = ClassifyStageResult(StageInjectPages, warn)
	assert.Equal(t, StageResultWarning, out.Result)
	assert.Equal(t, IssueMarkerNotFound, out.IssueCode)
	assert.Equal(t, SeverityWarning, out.Severity)
	assert.False(t, out.Abort)

	out = ClassifyStageResult(StageRenderCards, errors.New("plain"))
	assert.Equal(t, StageResultFatal, out.Result)
	assert.Equal(t, IssueRenderFailure, out.IssueCode)
	assert.True(t, out.Abort)
}

func TestRecordStageResultCountsAndRecords(t *testing.T) {
	r := NewBuildReport(fixedNow)
	rec := metrics.NewPrometheusRecorder(nil)
	r.RecordStageResult(StageScanInventory, StageResultSuccess, rec)
	r.RecordStageResult(StageScanInventory, StageResultWarning, rec)
	r.RecordStageResult(StageScanInventory, StageResultSkipped, rec)
	assert.Equal(t, StageCount{Success: 1, Warning: 1}, r.StageCounts[StageScanInventory])
}

func TestPersist(t *testing.T) {
	r := NewBuildReport(fixedNow)
	r.Vehicles = 3
	r.Sold = 1
	r.StageDurations[string(StageScanInventory)] = 25 * time.Millisecond
	r.AddIssue(IssueSitemapSkipped, StageWriteSitemap, SeverityWarning, "no base url", errors.New("no base url"))
	r.Finish(fixedNow.Add(time.Second))

	dir := t.TempDir()
	require.NoError(t, r.Persist(dir))

	data, err := os.ReadFile(filepath.Join(dir, ReportJSONFile))
	require.NoError(t, err)
	var got BuildReportSerializable
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 3, got.Vehicles)
	assert.Equal(t, "warning", got.Outcome)
	assert.Equal(t, []string{"no base url"}, got.Warnings)
	assert.Equal(t, int64(25), got.StageDurationsMS["scan_inventory"])
	require.Len(t, got.Issues, 1)
	assert.Equal(t, IssueSitemapSkipped, got.Issues[0].Code)

	summary, err := os.ReadFile(filepath.Join(dir, ReportTextFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "vehicles=3 sold=1")
	assert.Contains(t, string(summary), "outcome=warning")
}

func TestPipelineAddIf(t *testing.T) {
	p := NewPipeline().
		Add(StageScanInventory, nil).
		AddIf(false, StageDetailPages, nil).
		AddIf(true, StageWriteSitemap, nil)
	assert.Equal(t, []StageName{StageScanInventory, StageWriteSitemap}, p.Names())
	assert.Len(t, p.Build(), 2)
}
