// Package api exposes sessions over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/assist"
	"github.com/gsarma/judgepad/internal/code"
	"github.com/gsarma/judgepad/internal/hostmsg"
	"github.com/gsarma/judgepad/internal/language"
	"github.com/gsarma/judgepad/internal/session"
	"github.com/gsarma/judgepad/internal/store"
)

type Handler struct {
	// queries is nil when the service runs without a database; runs are
	// then always synchronous.
	queries   store.Querier
	sessions  *session.Manager
	assistant *assist.Assistant
	broker    *hostmsg.Broker
	logger    *zap.Logger
}

func NewHandler(queries store.Querier, sessions *session.Manager, assistant *assist.Assistant, broker *hostmsg.Broker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		queries:   queries,
		sessions:  sessions,
		assistant: assistant,
		broker:    broker,
		logger:    logger,
	}
}

// CreateSession starts a session with the default program loaded.
func (h *Handler) CreateSession(c *gin.Context) {
	s, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		h.logger.Error("create session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": s.ID,
		"state":      s.State(),
	})
}

// GetState returns the editor state of a session.
func (h *Handler) GetState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.State())
}

// PostCommand applies a host command ({"action": "get"|"set", ...}).
func (h *Handler) PostCommand(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var cmd hostmsg.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := cmd.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, err := h.sessions.HandleCommand(c.Request.Context(), id, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	if ev == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	c.JSON(http.StatusOK, ev)
}

// OpenFile loads a file into the editor and selects its language.
func (h *Handler) OpenFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		Name    string `json:"name" binding:"required"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.OpenFile(c.Request.Context(), body.Name, body.Content)
	c.JSON(http.StatusOK, s.State())
}

// Languages lists the merged catalog of both flavors, as seen by the
// session given in ?session_id, or by a throwaway session otherwise.
func (h *Handler) Languages(c *gin.Context) {
	s, ok := h.catalogSession(c)
	if !ok {
		return
	}
	entries, err := s.Languages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Language returns one catalog entry.
func (h *Handler) Language(c *gin.Context) {
	flavor := language.Flavor(c.Param("flavor"))
	if !flavor.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown flavor"})
		return
	}
	id, err := strconv.Atoi(c.Param("language_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid language id"})
		return
	}
	s, ok := h.catalogSession(c)
	if !ok {
		return
	}
	entry, err := s.Language(c.Request.Context(), flavor, id)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) catalogSession(c *gin.Context) (*session.Session, bool) {
	raw := c.Query("session_id")
	if raw == "" {
		return h.sessions.Catalog(), true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return nil, false
	}
	s, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return s, true
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	id, ok := sessionID(c)
	if !ok {
		return nil, false
	}
	s, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return s, true
}

// writeError maps pipeline errors to HTTP responses.
func writeError(c *gin.Context, err error) {
	var de *code.DispatchError
	switch {
	case errors.Is(err, code.ErrEmptySource):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, code.ErrAuxiliaryAssetUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &de):
		status := http.StatusBadGateway
		if errors.Is(err, code.ErrPollBudgetExhausted) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": err.Error(), "http_status": de.HTTPStatus, "body": de.Body})
	case errors.Is(err, assist.ErrAssistantUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusConflict, gin.H{"error": "run superseded by a newer run"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
