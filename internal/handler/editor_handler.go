package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taman-digital/internal/domain"
	"taman-digital/internal/middleware"
	"taman-digital/internal/service"
)

// EditorHandler exposes the edit buffer of the session user.
type EditorHandler struct {
	editor service.EditorServiceInterface
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(editor service.EditorServiceInterface) *EditorHandler {
	return &EditorHandler{editor: editor}
}

// IdeaRequest is the body of POST /me/ideas.
type IdeaRequest struct {
	Text string `json:"text"`
}

// AssistRequest is the body of the writing assistant endpoints.
type AssistRequest struct {
	Text string `json:"text"`
}

// AssistResponse carries the assistant output. On failure Text holds the
// unchanged input.
type AssistResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Open handles GET /api/v1/me/editor/:key
func (h *EditorHandler) Open(c *gin.Context) {
	state, err := h.editor.Open(c.Request.Context(), middleware.GetSession(c), c.Param("key"))
	if err != nil {
		respondError(c, err, "open editor")
		return
	}
	c.JSON(http.StatusOK, state)
}

// Edit handles PUT /api/v1/me/editor/:key. The snapshot is written after the
// autosave delay.
func (h *EditorHandler) Edit(c *gin.Context) {
	var draft domain.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.editor.Edit(middleware.GetSession(c), c.Param("key"), draft); err != nil {
		respondError(c, err, "record edit")
		return
	}
	c.Status(http.StatusAccepted)
}

// Flush handles POST /api/v1/me/editor/:key/flush
func (h *EditorHandler) Flush(c *gin.Context) {
	h.editor.Flush(c.Request.Context(), middleware.GetSession(c), c.Param("key"))
	c.Status(http.StatusNoContent)
}

// Recover handles POST /api/v1/me/editor/:key/recover
func (h *EditorHandler) Recover(c *gin.Context) {
	state, err := h.editor.Recover(c.Request.Context(), middleware.GetSession(c), c.Param("key"))
	if err != nil {
		respondError(c, err, "recover draft")
		return
	}
	c.JSON(http.StatusOK, state)
}

// Discard handles DELETE /api/v1/me/editor/:key/snapshot
func (h *EditorHandler) Discard(c *gin.Context) {
	if err := h.editor.Discard(c.Request.Context(), middleware.GetSession(c), c.Param("key")); err != nil {
		respondError(c, err, "discard draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// Commit handles POST /api/v1/me/editor/:key/commit
func (h *EditorHandler) Commit(c *gin.Context) {
	var draft domain.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	key := c.Param("key")
	post, err := h.editor.Commit(c.Request.Context(), middleware.GetSession(c), key, draft)
	if err != nil {
		respondError(c, err, "save post")
		return
	}
	status := http.StatusOK
	if key == domain.NewDraftKey {
		status = http.StatusCreated
	}
	c.JSON(status, post)
}

// QuickIdea handles POST /api/v1/me/ideas
func (h *EditorHandler) QuickIdea(c *gin.Context) {
	var req IdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	post, err := h.editor.QuickIdea(c.Request.Context(), middleware.GetSession(c), req.Text)
	if err != nil {
		respondError(c, err, "save idea")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Polish handles POST /api/v1/me/assist/polish
func (h *EditorHandler) Polish(c *gin.Context) {
	h.assist(c, h.editor.Polish)
}

// Summarize handles POST /api/v1/me/assist/summarize
func (h *EditorHandler) Summarize(c *gin.Context) {
	h.assist(c, h.editor.Summarize)
}

func (h *EditorHandler) assist(c *gin.Context, run func(ctx context.Context, text string) (string, error)) {
	var req AssistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	out, err := run(c.Request.Context(), req.Text)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, AssistResponse{Text: out})
	case errors.Is(err, service.ErrGeneratorUnavailable):
		c.JSON(http.StatusServiceUnavailable, AssistResponse{Text: req.Text, Error: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, AssistResponse{Text: req.Text, Error: "writing assistant failed"})
	}
}
