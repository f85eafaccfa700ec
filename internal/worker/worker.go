// Package worker runs queued jobs from the jobs table.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/store"
)

// JobExecutor executes a single job by type and payload.
type JobExecutor interface {
	ExecuteJob(ctx context.Context, jobID, sessionID uuid.UUID, jobType string, payload json.RawMessage) error
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying: the job fails on this attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Worker polls the database for pending jobs and executes them concurrently.
type Worker struct {
	store        store.Querier
	executor     JobExecutor
	concurrency  int
	pollInterval time.Duration
	retryBase    time.Duration
	logger       *zap.Logger
}

func New(q store.Querier, executor JobExecutor, concurrency int, logger *zap.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		store:        q,
		executor:     executor,
		concurrency:  concurrency,
		pollInterval: 500 * time.Millisecond,
		retryBase:    10 * time.Second,
		logger:       logger,
	}
}

// Start spawns concurrency goroutines that each poll for jobs.
// It blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("worker started", zap.Int("concurrency", w.concurrency))
	for i := 0; i < w.concurrency; i++ {
		go w.loop(ctx)
	}
	<-ctx.Done()
}

func (w *Worker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processNext(ctx)
		}
	}
}

func (w *Worker) processNext(ctx context.Context) {
	job, err := w.store.ClaimNextJob(ctx)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) && ctx.Err() == nil {
			w.logger.Error("claim job", zap.Error(err))
		}
		return
	}
	log := w.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", job.JobType),
		zap.Int32("attempt", job.Attempt))

	execErr := w.executor.ExecuteJob(ctx, job.ID, job.SessionID, job.JobType, json.RawMessage(job.Payload))

	now := time.Now()
	params := store.UpdateJobStatusParams{ID: job.ID, RunAt: job.RunAt}
	switch {
	case execErr == nil:
		params.Status = "completed"
		params.CompletedAt = &now
	case job.Attempt < job.MaxAttempts && !IsPermanent(execErr):
		params.Status = "pending"
		params.Error = pgtype.Text{String: execErr.Error(), Valid: true}
		params.RunAt = now.Add(w.backoff(job.Attempt))
		log.Warn("job failed, will retry", zap.Time("run_at", params.RunAt), zap.Error(execErr))
	default:
		params.Status = "failed"
		params.Error = pgtype.Text{String: execErr.Error(), Valid: true}
		log.Error("job failed", zap.Error(execErr))
	}

	if _, err := w.store.UpdateJobStatus(ctx, params); err != nil {
		log.Error("update job status", zap.String("status", params.Status), zap.Error(err))
		return
	}
	if execErr == nil {
		log.Info("job completed")
	}
}

// backoff doubles per attempt: 20s, 40s, 80s...
func (w *Worker) backoff(attempt int32) time.Duration {
	return time.Duration(int64(1)<<uint(attempt)) * w.retryBase
}
