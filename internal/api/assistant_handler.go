package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gsarma/judgepad/internal/assist"
)

// Ask sends a request to the session's assistant. Code and language changes
// in the reply are applied to the editor before responding.
func (h *Handler) Ask(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reply, err := s.Ask(c.Request.Context(), body.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// CompleteLine suggests a completion for an unfinished line. Lines that
// already look finished are answered without asking the model.
func (h *Handler) CompleteLine(c *gin.Context) {
	var body struct {
		Line string `json:"line"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if assist.LineComplete(body.Line) {
		c.JSON(http.StatusOK, gin.H{"completion": "", "skipped": true})
		return
	}
	completion, err := h.assistant.CompleteLine(c.Request.Context(), body.Line)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completion": completion, "skipped": false})
}
