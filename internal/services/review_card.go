package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/apierr"
	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/repos"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

type ReviewCardService interface {
	CreateCard(ctx context.Context, userID uuid.UUID, contentType, contentID string, due time.Time) (*types.ReviewCard, error)
	ListDue(ctx context.Context, userID uuid.UUID, contentType, date string) ([]*types.ReviewCard, error)
}

type reviewCardService struct {
	db       *gorm.DB
	log      *logger.Logger
	cardRepo repos.ReviewCardRepo
	syncSvc  PlannerSyncService
}

func NewReviewCardService(db *gorm.DB, log *logger.Logger, cardRepo repos.ReviewCardRepo, syncSvc PlannerSyncService) ReviewCardService {
	serviceLog := log.With("service", "ReviewCardService")
	return &reviewCardService{db: db, log: serviceLog, cardRepo: cardRepo, syncSvc: syncSvc}
}

func (cs *reviewCardService) CreateCard(ctx context.Context, userID uuid.UUID, contentType, contentID string, due time.Time) (*types.ReviewCard, error) {
	if !reviewContentTypes[contentType] {
		return nil, apierr.Validation("invalid content_type")
	}
	if contentID == "" {
		return nil, apierr.Validation("content_id is required")
	}
	if due.IsZero() {
		due = time.Now().UTC()
	}

	card := &types.ReviewCard{
		UserID:      userID,
		ContentType: contentType,
		ContentID:   contentID,
		Due:         due,
		State:       types.CardStateLearning,
	}
	created, err := cs.cardRepo.Create(ctx, nil, card)
	if err != nil {
		return nil, apierr.Store("failed to create review card", err)
	}

	// Keep the due day's planner event in step; failures here must not
	// fail card creation.
	cs.syncSvc.SyncNewCard(ctx, created)
	return created, nil
}

func (cs *reviewCardService) ListDue(ctx context.Context, userID uuid.UUID, contentType, date string) ([]*types.ReviewCard, error) {
	if !reviewContentTypes[contentType] {
		return nil, apierr.Validation("invalid content_type")
	}
	if date == "" {
		date = Today()
	}

	cards, err := cs.cardRepo.ListDueOnDate(ctx, nil, userID, contentType, date)
	if err != nil {
		return nil, apierr.Store("failed to list due review cards", err)
	}
	return cards, nil
}
