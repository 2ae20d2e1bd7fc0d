package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taman-digital/internal/middleware"
	"taman-digital/internal/service"
)

// MessageHandler handles direct messages of the session user.
type MessageHandler struct {
	messages service.MessageServiceInterface
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages service.MessageServiceInterface) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// SendMessageRequest is the body of POST /me/messages/:username.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Conversations handles GET /api/v1/me/conversations
func (h *MessageHandler) Conversations(c *gin.Context) {
	partners, err := h.messages.Conversations(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err, "list conversations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": partners})
}

// Conversation handles GET /api/v1/me/messages/:username
func (h *MessageHandler) Conversation(c *gin.Context) {
	thread, err := h.messages.Conversation(c.Request.Context(), middleware.GetSession(c), c.Param("username"))
	if err != nil {
		respondError(c, err, "load conversation")
		return
	}
	c.JSON(http.StatusOK, thread)
}

// Send handles POST /api/v1/me/messages/:username
func (h *MessageHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), middleware.GetSession(c), c.Param("username"), req.Content)
	if err != nil {
		respondError(c, err, "send message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}
