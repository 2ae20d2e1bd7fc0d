package handler

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"taman-digital/internal/domain"
	"taman-digital/internal/middleware"
	"taman-digital/internal/service"
)

// PostHandler handles reading, engagement and trash management of posts.
type PostHandler struct {
	content service.ContentServiceInterface
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(content service.ContentServiceInterface) *PostHandler {
	return &PostHandler{content: content}
}

// StatusRequest is the body of POST /me/posts/:id/status.
type StatusRequest struct {
	Status domain.PostStatus `json:"status"`
}

// CommentRequest is the body of POST /posts/:id/comments.
type CommentRequest struct {
	Content string `json:"content"`
}

// Search handles GET /api/v1/posts?q=
func (h *PostHandler) Search(c *gin.Context) {
	posts, err := h.content.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "search posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Trending handles GET /api/v1/posts/trending
func (h *PostHandler) Trending(c *gin.Context) {
	posts, err := h.content.Trending(c.Request.Context())
	if err != nil {
		respondError(c, err, "load trending posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get handles GET /api/v1/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.content.Get(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "retrieve post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// Markdown handles GET /api/v1/posts/:id/markdown
func (h *PostHandler) Markdown(c *gin.Context) {
	name, body, err := h.content.Markdown(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "export post")
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", body)
}

// Like handles POST /api/v1/posts/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	likes, err := h.content.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "like post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

// Share handles POST /api/v1/posts/:id/share
func (h *PostHandler) Share(c *gin.Context) {
	shares, err := h.content.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "share post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// Comment handles POST /api/v1/posts/:id/comments
func (h *PostHandler) Comment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	comment, err := h.content.Comment(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err, "add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListByAuthor handles GET /api/v1/users/:username/posts
func (h *PostHandler) ListByAuthor(c *gin.Context) {
	posts, err := h.content.ListByAuthor(c.Request.Context(), middleware.GetSession(c), c.Param("username"))
	if err != nil {
		respondError(c, err, "list posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Stats handles GET /api/v1/users/:username/stats
func (h *PostHandler) Stats(c *gin.Context) {
	stats, err := h.content.Stats(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// MyPosts handles GET /api/v1/me/posts
func (h *PostHandler) MyPosts(c *gin.Context) {
	sess := middleware.GetSession(c)
	posts, err := h.content.ListByAuthor(c.Request.Context(), sess, sess.Username)
	if err != nil {
		respondError(c, err, "list posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Trash handles GET /api/v1/me/trash
func (h *PostHandler) Trash(c *gin.Context) {
	posts, err := h.content.Trash(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err, "list trash")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// SoftDelete handles DELETE /api/v1/me/posts/:id
func (h *PostHandler) SoftDelete(c *gin.Context) {
	if err := h.content.SoftDelete(c.Request.Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		respondError(c, err, "move post to trash")
		return
	}
	c.Status(http.StatusNoContent)
}

// Restore handles POST /api/v1/me/posts/:id/restore
func (h *PostHandler) Restore(c *gin.Context) {
	if err := h.content.Restore(c.Request.Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		respondError(c, err, "restore post")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStatus handles POST /api/v1/me/posts/:id/status
func (h *PostHandler) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	post, err := h.content.SetStatus(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "change post status")
		return
	}
	c.JSON(http.StatusOK, post)
}

// Purge handles DELETE /api/v1/me/trash/:id
func (h *PostHandler) Purge(c *gin.Context) {
	if err := h.content.Purge(c.Request.Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		respondError(c, err, "purge post")
		return
	}
	c.Status(http.StatusNoContent)
}
