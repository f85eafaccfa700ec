package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gsarma/judgepad/internal/code"
	"github.com/gsarma/judgepad/internal/session"
	"github.com/gsarma/judgepad/internal/store"
	"github.com/gsarma/judgepad/internal/worker"
)

// ExecuteJob dispatches a job to the appropriate handler by type.
// It implements worker.JobExecutor.
func (h *Handler) ExecuteJob(ctx context.Context, jobID, sessionID uuid.UUID, jobType string, payload json.RawMessage) error {
	switch jobType {
	case jobTypeCodeExecute:
		return h.executeCodeJob(ctx, jobID, sessionID, payload)
	default:
		return worker.Permanent(fmt.Errorf("unknown job type: %s", jobType))
	}
}

func (h *Handler) executeCodeJob(ctx context.Context, jobID, sessionID uuid.UUID, raw json.RawMessage) error {
	var p code.JobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return worker.Permanent(fmt.Errorf("invalid code job payload: %w", err))
	}
	res, err := h.sessions.Execute(ctx, sessionID, p.Request)
	if err != nil {
		if retryable(err) {
			return err
		}
		return worker.Permanent(err)
	}
	_, err = h.queries.InsertExecution(ctx, executionParams(jobID, sessionID, res))
	if err != nil {
		return fmt.Errorf("store execution: %w", err)
	}
	return nil
}

// retryable reports whether a failed execution may be submitted again.
// Only transport failures and 5xx answers from the submission endpoint
// qualify; the poll budget timeout ends the run like any other failure.
func retryable(err error) bool {
	if errors.Is(err, code.ErrEmptySource) || errors.Is(err, session.ErrNotFound) ||
		errors.Is(err, code.ErrAuxiliaryAssetUnavailable) || errors.Is(err, code.ErrPollBudgetExhausted) {
		return false
	}
	var de *code.DispatchError
	if errors.As(err, &de) {
		return de.HTTPStatus == 0 || de.HTTPStatus >= 500
	}
	return true
}

func executionParams(jobID, sessionID uuid.UUID, res *code.Result) store.InsertExecutionParams {
	p := store.InsertExecutionParams{
		JobID:             jobID,
		SessionID:         sessionID,
		Token:             res.Token,
		StatusID:          int32(res.Status.ID),
		StatusDescription: res.Status.Description,
		Stdout:            res.Stdout,
		CompileOutput:     res.CompileOutput,
		Output:            res.Output,
		TurnaroundMs:      res.Turnaround.Milliseconds(),
	}
	if res.RawTime != nil {
		p.Time = pgtype.Text{String: *res.RawTime, Valid: true}
	}
	if res.RawMemory != nil {
		p.Memory = pgtype.Int4{Int32: int32(*res.RawMemory), Valid: true}
	}
	return p
}
