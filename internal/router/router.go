package router

import (
	"github.com/docvault/docvault/internal/handlers"
	"github.com/docvault/docvault/internal/middleware"
	"github.com/docvault/docvault/internal/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// New builds the gin engine with all routes registered
func New(
	linkHandler *handlers.LinkHandler,
	documentHandler *handlers.DocumentHandler,
	jwtManager *pkg.JWTManager,
	logger *zap.Logger,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logging(logger))

	api := engine.Group("/api")

	// Visitor-facing endpoints, no authentication.
	api.GET("/links/:token", linkHandler.GetLinkMeta)
	api.POST("/links/:token/access", linkHandler.AccessLink)

	// Owner-facing endpoints.
	owner := api.Group("", middleware.Auth(jwtManager))
	{
		owner.POST("/links", linkHandler.CreateLink)
		owner.DELETE("/links/:token", linkHandler.DeleteLink)
		owner.GET("/links/:token/visitors", linkHandler.ListLinkVisitors)

		owner.POST("/documents", documentHandler.Upload)
		owner.GET("/documents", documentHandler.List)
		owner.GET("/documents/:id", documentHandler.Get)
		owner.DELETE("/documents/:id", documentHandler.Delete)
		owner.GET("/documents/:id/links", linkHandler.ListDocumentLinks)
	}

	return engine
}
