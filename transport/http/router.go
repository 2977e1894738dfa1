package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/hashgate/ports"
)

// SetupRouter sets up the Gin router
func SetupRouter(handlers *Handlers, tokenizer ports.SessionTokenizer) *gin.Engine {
	router := gin.Default()

	router.GET("/healthz", handlers.Healthz)

	router.POST("/challenge", handlers.Challenge)
	router.POST("/login", handlers.Login)
	router.GET("/top-holders", handlers.TopHolders)

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(tokenizer))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
