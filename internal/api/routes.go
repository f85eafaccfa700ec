package api

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	r.GET("/languages", h.Languages)
	r.GET("/languages/:flavor/:language_id", h.Language)
	r.POST("/complete-line", h.CompleteLine)

	r.POST("/sessions", h.CreateSession)
	s := r.Group("/sessions/:id")
	{
		s.GET("/state", h.GetState)
		s.POST("/commands", h.PostCommand)
		s.POST("/files", h.OpenFile)
		s.POST("/run", h.Run)
		s.GET("/jobs/:job_id", h.GetJob)
		s.GET("/executions/:job_id", h.GetExecution)
		s.POST("/assistant", h.Ask)
		s.GET("/events", h.Events)
	}
}
