package judgepad

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// RunsService executes the editor contents of a session.
type RunsService struct {
	c *Client
}

// Run queues the editor contents for execution. Servers without a job queue
// run synchronously and answer with a RunResult instead; use RunSync there.
// The session's stdout and status line are updated when the job finishes, as
// long as the worker shares a process with the API.
func (s *RunsService) Run(ctx context.Context, sessionID string) (*QueuedRun, error) {
	return doRequest[QueuedRun](ctx, s.c, http.MethodPost, "/sessions/"+sessionID+"/run", nil, http.StatusAccepted)
}

// RunSync executes the editor contents and waits for the result.
func (s *RunsService) RunSync(ctx context.Context, sessionID string) (*RunResult, error) {
	return doRequest[RunResult](ctx, s.c, http.MethodPost, "/sessions/"+sessionID+"/run?sync=true", nil, http.StatusOK)
}

// Job returns the status of a queued run.
func (s *RunsService) Job(ctx context.Context, sessionID, jobID string) (*Job, error) {
	path := fmt.Sprintf("/sessions/%s/jobs/%s", sessionID, jobID)
	return doRequest[Job](ctx, s.c, http.MethodGet, path, nil, http.StatusOK)
}

// Execution returns the result of a completed queued run.
func (s *RunsService) Execution(ctx context.Context, sessionID, jobID string) (*Execution, error) {
	path := fmt.Sprintf("/sessions/%s/executions/%s", sessionID, jobID)
	return doRequest[Execution](ctx, s.c, http.MethodGet, path, nil, http.StatusOK)
}

// Wait polls a queued run every interval until it completes or fails.
func (s *RunsService) Wait(ctx context.Context, sessionID, jobID string, interval time.Duration) (*Execution, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		job, err := s.Job(ctx, sessionID, jobID)
		if err != nil {
			return nil, err
		}
		switch job.Status {
		case "completed":
			return s.Execution(ctx, sessionID, jobID)
		case "failed":
			msg := "job failed"
			if job.Error != nil {
				msg = *job.Error
			}
			return nil, fmt.Errorf("judgepad: %s", msg)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
