package app

import (
	"github.com/gin-gonic/gin"

	"github.com/inocenciorjr/medbrave-backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:          handlers.Auth,
		AuthMiddleware:       middleware.Auth,
		PlannerHandler:       handlers.Planner,
		ReviewSessionHandler: handlers.ReviewSession,
		ReviewCardHandler:    handlers.ReviewCard,
	})
}
