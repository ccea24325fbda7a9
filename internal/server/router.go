package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/inocenciorjr/medbrave-backend/internal/handlers"
	"github.com/inocenciorjr/medbrave-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler          *handlers.AuthHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PlannerHandler       *handlers.PlannerHandler
	ReviewSessionHandler *handlers.ReviewSessionHandler
	ReviewCardHandler    *handlers.ReviewCardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/auth/register", cfg.AuthHandler.Register)
	router.POST("/auth/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	// Planner
	protected.GET("/planner/events", cfg.PlannerHandler.GetEvents)
	protected.POST("/planner/events", cfg.PlannerHandler.CreateEvent)
	protected.GET("/planner/events/by-date-type", cfg.PlannerHandler.GetEventByDateAndType)
	protected.PUT("/planner/events/:eventId", cfg.PlannerHandler.UpdateEvent)
	protected.DELETE("/planner/events/:eventId", cfg.PlannerHandler.DeleteEvent)
	protected.PATCH("/planner/events/:eventId/progress", cfg.PlannerHandler.UpdateProgress)
	// Review sessions
	protected.POST("/review-sessions", cfg.ReviewSessionHandler.CreateSession)
	protected.GET("/review-sessions", cfg.ReviewSessionHandler.ListSessions)
	protected.GET("/review-sessions/active", cfg.ReviewSessionHandler.GetActiveSession)
	protected.GET("/review-sessions/:sessionId", cfg.ReviewSessionHandler.GetSession)
	protected.PUT("/review-sessions/:sessionId/progress", cfg.ReviewSessionHandler.UpdateProgress)
	protected.PATCH("/review-sessions/:sessionId/progress", cfg.ReviewSessionHandler.UpdateProgress)
	protected.POST("/review-sessions/:sessionId/complete-item", cfg.ReviewSessionHandler.CompleteItem)
	protected.POST("/review-sessions/:sessionId/complete", cfg.ReviewSessionHandler.CompleteSession)
	protected.POST("/review-sessions/:sessionId/abandon", cfg.ReviewSessionHandler.AbandonSession)
	// Review cards
	protected.POST("/reviews", cfg.ReviewCardHandler.CreateCard)
	protected.GET("/reviews/due", cfg.ReviewCardHandler.ListDue)

	return router
}
