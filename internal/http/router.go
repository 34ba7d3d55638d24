package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/smallbiznis/valora-notes/internal/config"
	"github.com/smallbiznis/valora-notes/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/valora-notes/internal/http/middleware"
	"github.com/smallbiznis/valora-notes/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, noteHandler *handler.NoteHandler, tenantHandler *handler.TenantHandler, authMiddleware *httpmiddleware.Auth, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	notes := r.Group("/notes", authMiddleware.ValidateJWT)
	{
		notes.POST("", noteHandler.Create)
		notes.GET("", noteHandler.List)
		notes.GET("/:id", noteHandler.Get)
		notes.PUT("/:id", noteHandler.Update)
		notes.DELETE("/:id", noteHandler.Delete)
	}

	tenants := r.Group("/tenants", authMiddleware.ValidateJWT)
	{
		tenants.POST("/:slug/upgrade", tenantHandler.Upgrade)
	}

	return r
}
