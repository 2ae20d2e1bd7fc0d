package handler

import (
	"github.com/gin-gonic/gin"

	"taman-digital/internal/middleware"
)

// Handlers groups every handler the API routes to.
type Handlers struct {
	Health   *HealthHandler
	Posts    *PostHandler
	Editor   *EditorHandler
	Users    *UserHandler
	Messages *MessageHandler
}

// RegisterRoutes mounts the health checks and the /api/v1 routes on router.
// Routes under /me and every write that acts as a user require a bearer session.
func RegisterRoutes(router gin.IRouter, h Handlers, sessions middleware.SessionResolver) {
	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)
	router.GET("/live", h.Health.Live)

	optional := middleware.OptionalSession(sessions)
	required := middleware.RequireSession(sessions)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Users.Register)
			auth.POST("/login", h.Users.Login)
			auth.POST("/provider", h.Users.LoginWithProvider)
			auth.POST("/logout", required, h.Users.Logout)
		}

		posts := v1.Group("/posts", optional)
		{
			posts.GET("", h.Posts.Search)
			posts.GET("/trending", h.Posts.Trending)
			posts.GET("/:id", h.Posts.Get)
			posts.GET("/:id/markdown", h.Posts.Markdown)
			posts.POST("/:id/like", h.Posts.Like)
			posts.POST("/:id/share", h.Posts.Share)
			posts.POST("/:id/comments", required, h.Posts.Comment)
		}

		users := v1.Group("/users", optional)
		{
			users.GET("", h.Users.Search)
			users.GET("/:username", h.Users.Profile)
			users.GET("/:username/posts", h.Posts.ListByAuthor)
			users.GET("/:username/stats", h.Posts.Stats)
			users.POST("/:username/follow", required, h.Users.ToggleFollow)
		}

		me := v1.Group("/me", required)
		{
			me.GET("", h.Users.Me)
			me.PUT("/profile", h.Users.UpdateProfile)
			me.DELETE("", h.Users.DeleteAccount)

			me.GET("/posts", h.Posts.MyPosts)
			me.DELETE("/posts/:id", h.Posts.SoftDelete)
			me.POST("/posts/:id/restore", h.Posts.Restore)
			me.POST("/posts/:id/status", h.Posts.SetStatus)
			me.GET("/trash", h.Posts.Trash)
			me.DELETE("/trash/:id", h.Posts.Purge)

			me.GET("/editor/:key", h.Editor.Open)
			me.PUT("/editor/:key", h.Editor.Edit)
			me.POST("/editor/:key/flush", h.Editor.Flush)
			me.POST("/editor/:key/recover", h.Editor.Recover)
			me.DELETE("/editor/:key/snapshot", h.Editor.Discard)
			me.POST("/editor/:key/commit", h.Editor.Commit)
			me.POST("/ideas", h.Editor.QuickIdea)
			me.POST("/assist/polish", h.Editor.Polish)
			me.POST("/assist/summarize", h.Editor.Summarize)

			me.GET("/conversations", h.Messages.Conversations)
			me.GET("/messages/:username", h.Messages.Conversation)
			me.POST("/messages/:username", h.Messages.Send)
		}
	}
}
