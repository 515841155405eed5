package site

import (
	"errors"

	"git.home.luguber.info/inful/lotbuilder/internal/inject"
	"git.home.luguber.info/inful/lotbuilder/internal/inventory"
	"git.home.luguber.info/inful/lotbuilder/internal/render"
	"git.home.luguber.info/inful/lotbuilder/internal/sitemap"
)

// StageOutcome is the normalized result of a stage execution.
type StageOutcome struct {
	Stage     StageName
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Abort     bool
}

func resultFromStageErrorKind(k StageErrorKind) StageResult {
	switch k {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	default:
		return StageResultFatal
	}
}

func severityFromStageErrorKind(k StageErrorKind) IssueSeverity {
	if k == StageErrorWarning {
		return SeverityWarning
	}
	return SeverityError
}

// ClassifyStageResult converts the error returned by a stage into a StageOutcome.
// Errors that are not StageErrors are fatal.
func ClassifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !errors.As(err, &se) {
		se = NewFatalStageError(stage, err)
	}
	if se.Kind == StageErrorCanceled {
		return StageOutcome{
			Stage:     stage,
			Error:     se,
			Result:    StageResultCanceled,
			IssueCode: IssueCanceled,
			Severity:  SeverityError,
			Abort:     true,
		}
	}

	return StageOutcome{
		Stage:     stage,
		Error:     se,
		Result:    resultFromStageErrorKind(se.Kind),
		IssueCode: classifyIssueCode(se),
		Severity:  severityFromStageErrorKind(se.Kind),
		Abort:     se.Kind == StageErrorFatal,
	}
}

// issueCodes maps sentinel causes to issue codes, checked in order.
var issueCodes = []struct {
	target error
	code   ReportIssueCode
}{
	{inventory.ErrInventoryRootNotFound, IssueInventoryNotFound},
	{inventory.ErrInventoryReadFailed, IssueInventoryRead},
	{inject.ErrPageNotFound, IssueTemplateNotFound},
	{render.ErrTemplateNotFound, IssueTemplateNotFound},
	{render.ErrTemplateInvalid, IssueTemplateInvalid},
	{inject.ErrInvalidMarker, IssueInvalidMarker},
	{inject.ErrMarkerNotFound, IssueMarkerNotFound},
	{inject.ErrRegionUnterminated, IssueRegionUnterminated},
	{sitemap.ErrBaseURLMissing, IssueSitemapSkipped},
	{sitemap.ErrBaseURLInvalid, IssueSitemapSkipped},
}

func classifyIssueCode(se *StageError) ReportIssueCode {
	for _, ic := range issueCodes {
		if errors.Is(se.Err, ic.target) {
			return ic.code
		}
	}
	switch se.Stage {
	case StageRenderCards, StageDetailPages:
		return IssueRenderFailure
	default:
		return IssueGenericStageError
	}
}
