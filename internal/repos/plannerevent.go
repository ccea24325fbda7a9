package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

type PlannerEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *types.PlannerEvent) (*types.PlannerEvent, error)
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.PlannerEvent, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, startDate, endDate string) ([]*types.PlannerEvent, error)
	Update(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, patch map[string]interface{}) (*types.PlannerEvent, error)
	Delete(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error
	GetByDateAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, contentType string) (*types.PlannerEvent, error)
}

type plannerEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlannerEventRepo(db *gorm.DB, baseLog *logger.Logger) PlannerEventRepo {
	repoLog := baseLog.With("repo", "PlannerEventRepo")
	return &plannerEventRepo{db: db, log: repoLog}
}

func (r *plannerEventRepo) Create(ctx context.Context, tx *gorm.DB, event *types.PlannerEvent) (*types.PlannerEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if event == nil {
		return nil, nil
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	if err := transaction.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *plannerEventRepo) GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.PlannerEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}

	var result types.PlannerEvent
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *plannerEventRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, startDate, endDate string) ([]*types.PlannerEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PlannerEvent
	if userID == uuid.Nil {
		return results, nil
	}

	query := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if startDate != "" && endDate != "" {
		// Full window: recurring templates stay in the result set even when
		// their own date falls outside it; the service expands them.
		query = query.
			Where("date >= ? OR is_recurring = ?", startDate, true).
			Where("date <= ? OR is_recurring = ?", endDate, true)
	} else if startDate != "" {
		query = query.Where("date >= ?", startDate)
	} else if endDate != "" {
		query = query.Where("date <= ?", endDate)
	}

	if err := query.
		Order("date asc").
		Order("start_hour asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *plannerEventRepo) Update(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, patch map[string]interface{}) (*types.PlannerEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(patch) == 0 {
		return r.GetByIDAndUser(ctx, tx, id, userID)
	}
	patch["updated_at"] = time.Now().UTC()

	if err := transaction.WithContext(ctx).
		Model(&types.PlannerEvent{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(patch).Error; err != nil {
		return nil, err
	}
	return r.GetByIDAndUser(ctx, tx, id, userID)
}

func (r *plannerEventRepo) Delete(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || userID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.PlannerEvent{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *plannerEventRepo) GetByDateAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, contentType string) (*types.PlannerEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || date == "" || contentType == "" {
		return nil, nil
	}

	var result types.PlannerEvent
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND date = ? AND content_type = ? AND event_type = ?",
			userID, date, contentType, types.EventTypeSystemReview).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
