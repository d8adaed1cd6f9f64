package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darkostanimirovic/cinesnap"
)

type createSessionRequest struct {
	Context *cinesnap.UserContext `json:"context"`
}

type createSessionResponse struct {
	ID string `json:"id"`
}

type turnRequest struct {
	Text    string                `json:"text"`
	Context *cinesnap.UserContext `json:"context"`
}

type historyResponse struct {
	ID    string          `json:"id"`
	Turns []cinesnap.Turn `json:"turns"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionHandler struct {
	registry *Registry
	log      *slog.Logger
}

// Create handles POST /v1/sessions
func (h *sessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	id, _, err := h.registry.Create(c.Request.Context(), req.Context)
	if err != nil {
		h.handleError(c, err, "failed to create session")
		return
	}
	c.JSON(http.StatusCreated, createSessionResponse{ID: id})
}

// Turn handles POST /v1/sessions/:id/turns
func (h *sessionHandler) Turn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	a, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "failed to load session")
		return
	}

	reply, err := a.HandleTurn(c.Request.Context(), req.Text, req.Context)
	if err != nil {
		h.handleError(c, err, "turn rejected")
		return
	}
	c.JSON(http.StatusOK, reply)
}

// History handles GET /v1/sessions/:id/history
func (h *sessionHandler) History(c *gin.Context) {
	a, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "failed to load session")
		return
	}
	c.JSON(http.StatusOK, historyResponse{ID: a.SessionID(), Turns: a.History()})
}

// Context handles GET /v1/sessions/:id/context
func (h *sessionHandler) Context(c *gin.Context) {
	a, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "failed to load session")
		return
	}
	c.JSON(http.StatusOK, a.UserContext())
}

// UpdateContext handles PATCH /v1/sessions/:id/context
func (h *sessionHandler) UpdateContext(c *gin.Context) {
	var patch cinesnap.UserContext
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	a, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "failed to load session")
		return
	}
	if err := a.UpdateContext(c.Request.Context(), patch); err != nil {
		h.handleError(c, err, "failed to update context")
		return
	}
	c.JSON(http.StatusOK, a.UserContext())
}

// Reset handles POST /v1/sessions/:id/reset
func (h *sessionHandler) Reset(c *gin.Context) {
	a, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "failed to load session")
		return
	}
	a.ResetSession()
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /v1/sessions/:id
func (h *sessionHandler) Delete(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err, "failed to delete session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *sessionHandler) handleError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, cinesnap.ErrAssistantClosed):
		c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	case errors.Is(err, cinesnap.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, cinesnap.ErrTurnInProgress):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.log.Error(msg, "session_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
	}
}
