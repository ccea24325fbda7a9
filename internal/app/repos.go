package app

import (
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/repos"
)

type Repos struct {
	User          repos.UserRepo
	UserToken     repos.UserTokenRepo
	PlannerEvent  repos.PlannerEventRepo
	ReviewSession repos.ReviewSessionRepo
	ReviewCard    repos.ReviewCardRepo
	PlannerSync   repos.PlannerSyncRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		UserToken:     repos.NewUserTokenRepo(db, log),
		PlannerEvent:  repos.NewPlannerEventRepo(db, log),
		ReviewSession: repos.NewReviewSessionRepo(db, log),
		ReviewCard:    repos.NewReviewCardRepo(db, log),
		PlannerSync:   repos.NewPlannerSyncRepo(db, log),
	}
}
