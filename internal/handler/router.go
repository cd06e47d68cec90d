package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rsvphub/internal/config"
	"rsvphub/internal/handler/middleware"
	jwtpkg "rsvphub/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	authHandler *AuthHandler,
	communityHandler *CommunityHandler,
	eventHandler *EventHandler,
	rsvpHandler *RSVPHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	r.POST("/api/users", authHandler.Register)
	r.POST("/api/login", authHandler.Login)

	// Everything else requires a bearer token.
	api := r.Group("/api")
	api.Use(middleware.JWTAuth(jwtManager))
	{
		api.GET("/users", authHandler.ListUsers)

		api.GET("/communities", communityHandler.List)
		api.POST("/communities", communityHandler.Create)
		api.GET("/communities/:code", communityHandler.GetByCode)
		api.POST("/communities/:code/join", communityHandler.Join)
		// :code carries the community id on this route; gin requires a single
		// placeholder name per segment.
		api.GET("/communities/:code/events", communityHandler.ListEvents)

		api.POST("/events", eventHandler.Create)
		api.GET("/events/:eventId/rsvps", rsvpHandler.ListForEvent)
		api.GET("/events/:eventId/rsvps/me", rsvpHandler.GetMine)

		api.POST("/rsvps", rsvpHandler.Create)
		api.GET("/rsvps/:code", rsvpHandler.GetByCode)
		api.PUT("/rsvps/:code/scan", rsvpHandler.Scan)
	}

	return r
}
