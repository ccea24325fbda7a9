package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

type ReviewCardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, card *types.ReviewCard) (*types.ReviewCard, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ids []string) ([]*types.ReviewCard, error)
	ListDueOnDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType, date string) ([]*types.ReviewCard, error)
}

type reviewCardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewCardRepo(db *gorm.DB, baseLog *logger.Logger) ReviewCardRepo {
	repoLog := baseLog.With("repo", "ReviewCardRepo")
	return &reviewCardRepo{db: db, log: repoLog}
}

func (r *reviewCardRepo) Create(ctx context.Context, tx *gorm.DB, card *types.ReviewCard) (*types.ReviewCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if card == nil {
		return nil, nil
	}
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}

	if err := transaction.WithContext(ctx).Create(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

func (r *reviewCardRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ids []string) ([]*types.ReviewCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReviewCard
	if userID == uuid.Nil || len(ids) == 0 {
		return results, nil
	}

	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			r.log.Warn("Skipping malformed card id", "id", raw)
			continue
		}
		parsed = append(parsed, id)
	}
	if len(parsed) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, parsed).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewCardRepo) ListDueOnDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType, date string) ([]*types.ReviewCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReviewCard
	if userID == uuid.Nil || contentType == "" || date == "" {
		return results, nil
	}

	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, err
	}
	startOfDay := day.UTC()
	endOfDay := startOfDay.AddDate(0, 0, 1)

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND content_type = ? AND due >= ? AND due < ? AND state <> ?",
			userID, contentType, startOfDay, endOfDay, types.CardStateNew).
		Order("due asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
