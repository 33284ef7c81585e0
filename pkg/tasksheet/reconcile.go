package tasksheet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Outcome classifies how one TaskRow ended.
type Outcome int

const (
	// OutcomeSuccess means the partial update was accepted remotely.
	OutcomeSuccess Outcome = iota
	// OutcomeLocalFailure means the row was rejected before any network
	// call (missing identifiers, non-serializable payload).
	OutcomeLocalFailure
	// OutcomeRemoteFailure means the remote service rejected the update
	// or the call failed in transit.
	OutcomeRemoteFailure
)

// RowResult records the outcome for a single TaskRow.
type RowResult struct {
	Row     TaskRow
	Outcome Outcome
	Reason  string
}

// Succeeded reports whether the row reconciled.
func (r RowResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Report collects per-row outcomes for one reconciliation run.
type Report struct {
	Results []RowResult
}

// Failures returns the results that did not succeed, in row order.
func (r Report) Failures() []RowResult {
	var failed []RowResult
	for _, result := range r.Results {
		if !result.Succeeded() {
			failed = append(failed, result)
		}
	}
	return failed
}

// SuccessCount returns the number of rows that reconciled.
func (r Report) SuccessCount() int {
	count := 0
	for _, result := range r.Results {
		if result.Succeeded() {
			count++
		}
	}
	return count
}

// Summary renders the human-readable end-of-run block.
func (r Report) Summary() string {
	failures := r.Failures()
	var b strings.Builder
	b.WriteString("Import summary\n")
	b.WriteString("-------------\n")
	fmt.Fprintf(&b, "Total rows processed : %d\n", len(r.Results))
	fmt.Fprintf(&b, "Successful updates   : %d\n", r.SuccessCount())
	fmt.Fprintf(&b, "Failed updates       : %d\n", len(failures))
	if len(failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, failure := range failures {
			taskID := failure.Row.TaskID
			if taskID == "" {
				taskID = "N/A"
			}
			fmt.Fprintf(&b, "  Row %d (Task ID: %s): %s\n", failure.Row.RowIndex, taskID, failure.Reason)
		}
	}
	return b.String()
}

// TaskUpdater submits a partial task update addressed by project and
// task id.
type TaskUpdater interface {
	UpdateTask(ctx context.Context, projectID, taskID string, payload map[string]any) error
}

// Reconciler applies detected TaskRows to the remote service one at a
// time, in row order. Rows are independent: one failure never aborts the
// rest. There is no retry within a run; failed rows stay visually
// distinct in the audited output so a second pass can pick them up.
type Reconciler struct {
	Updater TaskUpdater
	Logger  *zap.Logger
	// CallTimeout bounds each remote update. Zero means no bound beyond
	// the caller's context.
	CallTimeout time.Duration
}

// Process reconciles rows sequentially and returns the collected report.
func (r *Reconciler) Process(ctx context.Context, rows []TaskRow) Report {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	report := Report{Results: make([]RowResult, 0, len(rows))}
	for _, row := range rows {
		result := r.processRow(ctx, row)
		if result.Succeeded() {
			logger.Info("task updated",
				zap.Int("row", row.RowIndex),
				zap.String("task_id", row.TaskID))
		} else {
			logger.Warn("task update failed",
				zap.Int("row", row.RowIndex),
				zap.String("task_id", row.TaskID),
				zap.String("reason", result.Reason))
		}
		report.Results = append(report.Results, result)
	}
	return report
}

func (r *Reconciler) processRow(ctx context.Context, row TaskRow) RowResult {
	if row.TaskID == "" {
		return RowResult{Row: row, Outcome: OutcomeLocalFailure, Reason: "Task Id is missing."}
	}
	if row.ProjectID == "" {
		return RowResult{Row: row, Outcome: OutcomeLocalFailure, Reason: "Project Id is missing."}
	}

	payload := Unflatten(row.Values)
	if _, err := json.Marshal(payload); err != nil {
		return RowResult{Row: row, Outcome: OutcomeLocalFailure, Reason: "Payload contains non-serializable values."}
	}

	callCtx := ctx
	if r.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.CallTimeout)
		defer cancel()
	}
	if err := r.Updater.UpdateTask(callCtx, row.ProjectID, row.TaskID, payload); err != nil {
		return RowResult{Row: row, Outcome: OutcomeRemoteFailure, Reason: err.Error()}
	}
	return RowResult{Row: row, Outcome: OutcomeSuccess}
}
