package app

import (
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/services"
)

type Services struct {
	Auth          services.AuthService
	Planner       services.PlannerService
	ReviewSession services.ReviewSessionService
	ReviewCard    services.ReviewCardService
	PlannerSync   services.PlannerSyncService
	SyncWorker    *services.SyncWorker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")
	planner := services.NewPlannerService(db, log, r.PlannerEvent)
	plannerSync := services.NewPlannerSyncService(db, log, planner, r.ReviewCard, r.PlannerSync)
	return Services{
		Auth:          services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Planner:       planner,
		ReviewSession: services.NewReviewSessionService(db, log, r.ReviewSession),
		ReviewCard:    services.NewReviewCardService(db, log, r.ReviewCard, plannerSync),
		PlannerSync:   plannerSync,
		SyncWorker:    services.NewSyncWorker(db, log, r.PlannerSync, r.ReviewSession, plannerSync, cfg.SyncWorkerInterval),
	}
}
