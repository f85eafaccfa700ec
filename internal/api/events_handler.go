package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Events streams the host events of a session as server-sent events, one
// SSE event per host event, named after it.
func (h *Handler) Events(c *gin.Context) {
	if h.broker == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "event stream not configured"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	events, cancel := h.broker.Subscribe(s.ID)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
