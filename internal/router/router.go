package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/rebbitapp/rebbit-api/internal/handler"    // import the handlers that implement business logic
	"github.com/rebbitapp/rebbit-api/internal/middleware" // import middleware for token authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check and the static upload directory.
func RegisterRoutes(e *echo.Echo, uploadDir string) {
	// Load balancers and monitoring systems use this to verify the service
	// is up and running.
	e.GET("/healthz", handler.Health)
	// Uploaded post images are served straight from disk.
	e.Static("/uploads", uploadDir)
}

// RegisterAuth registers the /api/auth routes. Register, login and the
// password-reset pair are open; everything else requires a valid token in
// the x-auth-token header.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	auth := g.Group("", middleware.TokenAuth(jwtSecret))
	auth.GET("/user", a.CurrentUser)
	auth.PUT("/change-email", a.ChangeEmail)
	auth.PUT("/change-password", a.ChangePassword)
	auth.PUT("/change-pseudo", a.ChangePseudo)
	auth.DELETE("/delete-account", a.DeleteAccount)
	auth.GET("/generate-token", a.GenerateToken)
}

// RegisterUsers registers the /api/users routes. Pseudo resolution by id
// list is public so post and comment authors can be displayed to guests.
func RegisterUsers(e *echo.Echo, u *handler.UsersHandler, jwtSecret string) {
	g := e.Group("/api/users")
	g.POST("/by-ids", u.ByIDs)

	auth := g.Group("", middleware.TokenAuth(jwtSecret))
	auth.GET("/me", u.Me)
	auth.PUT("/pseudo", u.UpdatePseudo)
	auth.PUT("/password", u.UpdatePassword)
	auth.DELETE("", u.DeleteAccount)
	auth.GET("/:id/posts", u.PostsByUser)
	auth.GET("/:id/comments", u.CommentsByUser)
	auth.GET("/:id/upvotes", u.UpvotesByUser)
}

// RegisterPosts registers the /api/posts routes. Browsing is public;
// creating, upvoting and editing require a token. The /tags/popular and
// /tags/:tag routes must be registered before /:id so Echo does not try
// to parse "tags" as a post id.
func RegisterPosts(e *echo.Echo, p *handler.PostsHandler, jwtSecret string) {
	g := e.Group("/api/posts")
	g.GET("", p.List)
	g.GET("/tags/popular", p.PopularTags)
	g.GET("/tags/:tag", p.ByTag)
	g.GET("/:id", p.GetByID)

	auth := g.Group("", middleware.TokenAuth(jwtSecret))
	auth.POST("", p.Create)
	auth.PUT("/upvote/:id", p.ToggleUpvote)
	auth.PUT("/state/:id", p.UpdateState)
	auth.PUT("/:id", p.Update)
	auth.DELETE("/:id", p.Delete)
}

// RegisterComments registers the /api/comments routes. The literal /user
// route precedes /:postId for the same matching reason as the posts group.
func RegisterComments(e *echo.Echo, cm *handler.CommentsHandler, jwtSecret string) {
	g := e.Group("/api/comments")

	auth := g.Group("", middleware.TokenAuth(jwtSecret))
	auth.POST("", cm.Create)
	auth.GET("/user", cm.MyComments)
	auth.PUT("/upvote/:id", cm.ToggleUpvote)
	auth.PUT("/:id", cm.Update)
	auth.DELETE("/:id", cm.Delete)

	g.GET("/:postId", cm.ListByPost)
}

// RegisterMyList registers the /api/mylist routes, all authenticated.
func RegisterMyList(e *echo.Echo, l *handler.MyListHandler, jwtSecret string) {
	g := e.Group("/api/mylist", middleware.TokenAuth(jwtSecret))
	g.PUT("/posts/:id", l.TogglePost)
	g.PUT("/comments/:id", l.ToggleComment)
	g.PUT("/tags", l.SetTags)
}

// RegisterAdmin registers the /api/admin routes. Every route requires a
// valid token and the admin role; non-admins get a 403.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/api/admin", middleware.TokenAuth(jwtSecret), middleware.RequireAdmin())
	g.GET("/users", a.ListUsers)
	g.GET("/users/:id", a.GetUser)
	g.PUT("/users/:id", a.UpdateUser)
	g.DELETE("/users/:id", a.DeleteUser)
	g.GET("/users/:id/posts", a.UserPosts)
	g.GET("/users/:id/comments", a.UserComments)
	g.DELETE("/comments/:id", a.DeleteComment)
	g.GET("/upvotes", a.RecentUpvotes)
}

// RegisterUpload registers the authenticated /api/upload route.
func RegisterUpload(e *echo.Echo, u *handler.UploadHandler, jwtSecret string) {
	g := e.Group("/api/upload", middleware.TokenAuth(jwtSecret))
	g.POST("", u.Upload)
}
