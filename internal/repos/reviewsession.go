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

// SessionFilter narrows ListByUser. Empty fields are ignored.
type SessionFilter struct {
	ContentType string
	Date        string
	Status      string
}

type ReviewSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.ReviewSession) (*types.ReviewSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ReviewSession, error)
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.ReviewSession, error)
	GetLatestBySlot(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType, date string, statuses []string) (*types.ReviewSession, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter SessionFilter) ([]*types.ReviewSession, error)
	Update(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, patch map[string]interface{}) (*types.ReviewSession, error)
}

type reviewSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewSessionRepo(db *gorm.DB, baseLog *logger.Logger) ReviewSessionRepo {
	repoLog := baseLog.With("repo", "ReviewSessionRepo")
	return &reviewSessionRepo{db: db, log: repoLog}
}

func (r *reviewSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.ReviewSession) (*types.ReviewSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if session == nil {
		return nil, nil
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *reviewSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ReviewSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.ReviewSession
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reviewSessionRepo) GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.ReviewSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}

	var result types.ReviewSession
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

func (r *reviewSessionRepo) GetLatestBySlot(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType, date string, statuses []string) (*types.ReviewSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || contentType == "" || date == "" {
		return nil, nil
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ? AND content_type = ? AND date = ?", userID, contentType, date)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var result types.ReviewSession
	err := query.Order("started_at desc").First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reviewSessionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter SessionFilter) ([]*types.ReviewSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReviewSession
	if userID == uuid.Nil {
		return results, nil
	}

	query := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if filter.ContentType != "" {
		query = query.Where("content_type = ?", filter.ContentType)
	}
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Order("started_at desc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewSessionRepo) Update(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, patch map[string]interface{}) (*types.ReviewSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(patch) == 0 {
		return r.GetByIDAndUser(ctx, tx, id, userID)
	}
	patch["updated_at"] = time.Now().UTC()

	if err := transaction.WithContext(ctx).
		Model(&types.ReviewSession{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(patch).Error; err != nil {
		return nil, err
	}
	return r.GetByIDAndUser(ctx, tx, id, userID)
}
