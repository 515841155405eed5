package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/lotbuilder/internal/metrics"
	"git.home.luguber.info/inful/lotbuilder/internal/output"
	"git.home.luguber.info/inful/lotbuilder/internal/version"
)

// Report file names written by Persist.
const (
	ReportJSONFile = "build-report.json"
	ReportTextFile = "build-report.txt"
)

// BuildOutcome is the final build result state.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportIssueCode enumerates machine-parseable issue identifiers.
// Codes are a stable contract: append only.
type ReportIssueCode string

const (
	IssueCanceled           ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError  ReportIssueCode = "GENERIC_STAGE_ERROR"
	IssueInventoryNotFound  ReportIssueCode = "INVENTORY_NOT_FOUND"
	IssueInventoryRead      ReportIssueCode = "INVENTORY_READ_FAILED"
	IssueTemplateNotFound   ReportIssueCode = "TEMPLATE_NOT_FOUND"
	IssueTemplateInvalid    ReportIssueCode = "TEMPLATE_INVALID"
	IssueInvalidMarker      ReportIssueCode = "INVALID_MARKER"
	IssueMarkerNotFound     ReportIssueCode = "MARKER_NOT_FOUND"
	IssueRegionUnterminated ReportIssueCode = "REGION_UNTERMINATED"
	IssueRenderFailure      ReportIssueCode = "RENDER_FAILURE"
	IssueSitemapSkipped     ReportIssueCode = "SITEMAP_SKIPPED"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is one problem encountered during a build.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// BuildReport captures what a run did.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Start           time.Time
	End             time.Time
	Errors          []error
	Warnings        []error
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount

	Vehicles      int
	Sold          int
	ListingCards  int
	HomeCards     int
	InjectedPages int
	// UnchangedPages counts injections whose output already matched.
	UnchangedPages  int
	SkippedPages    int
	DetailWritten   int
	DetailUnchanged int
	DetailPruned    int
	SitemapURLs     int

	Outcome BuildOutcome
	Issues  []ReportIssue
	Version string
}

// NewBuildReport constructs an empty report stamped with a fresh build id.
func NewBuildReport(start time.Time) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         uuid.NewString(),
		Start:           start,
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
		Version:         version.Version,
	}
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg})
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// HasIssue reports whether an issue with code was recorded.
func (r *BuildReport) HasIssue(code ReportIssueCode) bool {
	for _, is := range r.Issues {
		if is.Code == code {
			return true
		}
	}
	return false
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish(end time.Time) { r.End = end }

// RecordStageResult updates counters and emits metrics when recorder is non-nil.
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageCounts == nil {
		r.StageCounts = make(map[StageName]StageCount)
	}
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultWarning:
		sc.Warning++
		label = metrics.ResultWarning
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	case StageResultSkipped:
	}
	r.StageCounts[stage] = sc
	if recorder != nil && label != "" {
		recorder.IncStageResult(string(stage), label)
	}
}

// DeriveOutcome sets Outcome from the recorded errors and warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("vehicles=%d sold=%d listing_cards=%d home_cards=%d pages_injected=%d pages_skipped=%d detail_written=%d detail_unchanged=%d sitemap_urls=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.Vehicles, r.Sold, r.ListingCards, r.HomeCards, r.InjectedPages, r.SkippedPages,
		r.DetailWritten, r.DetailUnchanged, r.SitemapURLs, dur.Truncate(time.Millisecond),
		len(r.Errors), len(r.Warnings), string(r.Outcome))
}

// Persist writes build-report.json and build-report.txt into root atomically.
func (r *BuildReport) Persist(root string) error {
	if r.Outcome == "" {
		r.DeriveOutcome()
	}
	jb, err := json.MarshalIndent(r.Serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := output.WriteFileAtomic(filepath.Join(root, ReportJSONFile), append(jb, '\n')); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	if err := output.WriteFileAtomic(filepath.Join(root, ReportTextFile), []byte(r.Summary()+"\n")); err != nil {
		return fmt.Errorf("write report summary: %w", err)
	}
	return nil
}

// Serializable returns a copy with errors flattened to strings.
func (r *BuildReport) Serializable() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	kinds := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		kinds[string(k)] = string(v)
	}
	durations := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[k] = v.Milliseconds()
	}
	issues := r.Issues
	if issues == nil {
		issues = []ReportIssue{}
	}

	s := &BuildReportSerializable{
		SchemaVersion:    r.SchemaVersion,
		BuildID:          r.BuildID,
		Start:            r.Start,
		End:              r.End,
		Errors:           make([]string, len(r.Errors)),
		Warnings:         make([]string, len(r.Warnings)),
		StageDurationsMS: durations,
		StageErrorKinds:  kinds,
		StageCounts:      stageCounts,
		Vehicles:         r.Vehicles,
		Sold:             r.Sold,
		ListingCards:     r.ListingCards,
		HomeCards:        r.HomeCards,
		InjectedPages:    r.InjectedPages,
		UnchangedPages:   r.UnchangedPages,
		SkippedPages:     r.SkippedPages,
		DetailWritten:    r.DetailWritten,
		DetailUnchanged:  r.DetailUnchanged,
		DetailPruned:     r.DetailPruned,
		SitemapURLs:      r.SitemapURLs,
		Outcome:          string(r.Outcome),
		Issues:           issues,
		Version:          r.Version,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion    int                   `json:"schema_version"`
	BuildID          string                `json:"build_id"`
	Start            time.Time             `json:"start"`
	End              time.Time             `json:"end"`
	Errors           []string              `json:"errors"`
	Warnings         []string              `json:"warnings"`
	StageDurationsMS map[string]int64      `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string     `json:"stage_error_kinds"`
	StageCounts      map[string]StageCount `json:"stage_counts"`
	Vehicles         int                   `json:"vehicles"`
	Sold             int                   `json:"sold"`
	ListingCards     int                   `json:"listing_cards"`
	HomeCards        int                   `json:"home_cards"`
	InjectedPages    int                   `json:"injected_pages"`
	UnchangedPages   int                   `json:"unchanged_pages"`
	SkippedPages     int                   `json:"skipped_pages"`
	DetailWritten    int                   `json:"detail_written"`
	DetailUnchanged  int                   `json:"detail_unchanged"`
	DetailPruned     int                   `json:"detail_pruned"`
	SitemapURLs      int                   `json:"sitemap_urls"`
	Outcome          string                `json:"outcome"`
	Issues           []ReportIssue         `json:"issues"`
	Version          string                `json:"version,omitempty"`
}
