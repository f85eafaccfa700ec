package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/code"
	"github.com/gsarma/judgepad/internal/store"
)

const jobTypeCodeExecute = "code.execute"

type runResponse struct {
	*code.Result
	StatusLine string `json:"status_line"`
}

// Run executes the editor contents of a session.
//
// Async (default): queues a code.execute job and returns 202
// {"job_id": "...", "status": "queued"}; fetch the result from
// GET /sessions/:id/executions/:job_id once the job completes.
// Sync (?sync=true): runs in the request and returns the result. Without a
// database every run is synchronous.
func (h *Handler) Run(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if c.Query("sync") != "true" && h.queries != nil {
		req := s.Request()
		if err := req.Validate(); err != nil {
			writeError(c, err)
			return
		}
		payloadJSON, _ := json.Marshal(code.JobPayload{Request: req})
		job, err := h.queries.CreateJob(c.Request.Context(), store.CreateJobParams{
			SessionID: s.ID,
			JobType:   jobTypeCodeExecute,
			Payload:   payloadJSON,
		})
		if err != nil {
			h.logger.Error("queue run", zap.String("session_id", s.ID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue job"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "status": "queued"})
		return
	}

	res, err := s.Run(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, runResponse{Result: res, StatusLine: res.StatusLine()})
}

// GetJob returns a queued run's job row, scoped to the session.
func (h *Handler) GetJob(c *gin.Context) {
	sid, jobID, ok := h.jobParams(c)
	if !ok {
		return
	}
	job, err := h.queries.GetJob(c.Request.Context(), store.GetJobParams{ID: jobID, SessionID: sid})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetExecution returns the stored result of a completed code.execute job.
func (h *Handler) GetExecution(c *gin.Context) {
	sid, jobID, ok := h.jobParams(c)
	if !ok {
		return
	}
	exec, err := h.queries.GetExecution(c.Request.Context(), store.GetExecutionParams{JobID: jobID, SessionID: sid})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "execution result not found"})
		return
	}
	c.JSON(http.StatusOK, exec)
}

func (h *Handler) jobParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	if h.queries == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "job queue not configured"})
		return uuid.Nil, uuid.Nil, false
	}
	sid, ok := sessionID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return uuid.Nil, uuid.Nil, false
	}
	return sid, jobID, true
}
