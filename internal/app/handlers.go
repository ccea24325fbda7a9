package app

import (
	"github.com/inocenciorjr/medbrave-backend/internal/handlers"
	"github.com/inocenciorjr/medbrave-backend/internal/logger"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Planner       *handlers.PlannerHandler
	ReviewSession *handlers.ReviewSessionHandler
	ReviewCard    *handlers.ReviewCardHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:          handlers.NewAuthHandler(log, services.Auth),
		Planner:       handlers.NewPlannerHandler(log, services.Planner),
		ReviewSession: handlers.NewReviewSessionHandler(log, services.ReviewSession, services.PlannerSync),
		ReviewCard:    handlers.NewReviewCardHandler(log, services.ReviewCard),
	}
}
