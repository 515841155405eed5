package site

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
)

// RunStages executes stages in order, recording timing and stopping on the
// first fatal error or cancellation. Warnings are recorded and the run
// continues.
func RunStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	observer := bs.Generator.Observer()
	recorder := bs.Generator.Recorder()

	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(st.Name, ctx.Err())
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.AddIssue(IssueCanceled, st.Name, SeverityError, se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultCanceled, recorder)
			observer.OnStageComplete(st.Name, 0, StageResultCanceled)
			return se
		default:
		}

		observer.OnStageStart(st.Name)

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[string(st.Name)] = dur

		out := ClassifyStageResult(st.Name, err)
		if out.Error != nil {
			bs.Report.StageErrorKinds[st.Name] = out.Error.Kind
			bs.Report.AddIssue(out.IssueCode, out.Stage, out.Severity, out.Error.Error(), out.Error)
			if out.Severity == SeverityWarning {
				slog.Warn("Stage completed with warnings",
					logfields.BuildID(bs.Report.BuildID), logfields.Stage(string(st.Name)), logfields.Error(out.Error.Err))
			}
		}
		bs.Report.RecordStageResult(st.Name, out.Result, recorder)
		observer.OnStageComplete(st.Name, dur, out.Result)

		slog.Debug("Stage finished",
			logfields.BuildID(bs.Report.BuildID),
			logfields.Stage(string(st.Name)),
			logfields.Duration(dur),
			logfields.Outcome(string(out.Result)))

		if out.Abort {
			if out.Error != nil {
				return out.Error
			}
			return fmt.Errorf("stage %s aborted", st.Name)
		}
	}
	return nil
}
