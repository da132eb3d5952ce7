package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danilovichz/lawpro-v2/models"
	"github.com/danilovichz/lawpro-v2/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCreator persists new chat sessions
type SessionCreator interface {
	Create(ctx context.Context, session *models.ChatSession) error
}

// ConversationHandler handles HTTP requests for chat sessions and messages
type ConversationHandler struct {
	conversationService *service.ConversationService
	sessions            SessionCreator
}

// NewConversationHandler creates a new conversation handler. sessions may be
// nil when the state store is not Postgres; session keys are then only generated.
func NewConversationHandler(conversationService *service.ConversationService, sessions SessionCreator) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		sessions:            sessions,
	}
}

// CreateSessionRequest represents the request body for creating a session
type CreateSessionRequest struct {
	SessionKey string `json:"session_key"`
	Title      string `json:"title"`
}

// ProcessMessageRequest represents the request body for posting a message
type ProcessMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// CreateSession handles POST /api/sessions
func (h *ConversationHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	session := &models.ChatSession{
		SessionKey: req.SessionKey,
		Title:      req.Title,
	}

	if h.sessions != nil {
		if err := h.sessions.Create(c.Request.Context(), session); err != nil {
			respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
			return
		}
	} else {
		if session.SessionKey == "" {
			session.SessionKey = uuid.NewString()
		}
		now := time.Now()
		session.CreatedAt, session.UpdatedAt = now, now
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    session,
	})
}

// GetState handles GET /api/sessions/:id/state
func (h *ConversationHandler) GetState(c *gin.Context) {
	state, err := h.conversationService.GetState(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STATE_FETCH_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    state,
	})
}

// ProcessMessage handles POST /api/sessions/:id/messages
func (h *ConversationHandler) ProcessMessage(c *gin.Context) {
	var req ProcessMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result := h.conversationService.Process(c.Request.Context(), service.ProcessMessageRequest{
		SessionID: c.Param("id"),
		Message:   req.Message,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// DeleteSession handles DELETE /api/sessions/:id
func (h *ConversationHandler) DeleteSession(c *gin.Context) {
	if err := h.conversationService.ResetState(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
