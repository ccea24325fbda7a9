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

type PlannerSyncRepo interface {
	EnqueueTask(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.PlannerSyncTask, error)
	ListPendingTasks(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PlannerSyncTask, error)
	MarkTaskDone(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) error
	RecordTaskFailure(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, attempts int, lastError string, terminal bool) error
	GetState(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, eventDate string) (*types.PlannerSyncState, error)
	UpsertState(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, eventDate string, appliedCount int) error
}

type plannerSyncRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlannerSyncRepo(db *gorm.DB, baseLog *logger.Logger) PlannerSyncRepo {
	repoLog := baseLog.With("repo", "PlannerSyncRepo")
	return &plannerSyncRepo{db: db, log: repoLog}
}

func (r *plannerSyncRepo) EnqueueTask(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.PlannerSyncTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	task := &types.PlannerSyncTask{
		ID:        uuid.New(),
		SessionID: sessionID,
		Status:    types.SyncTaskStatusPending,
	}
	if err := transaction.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (r *plannerSyncRepo) ListPendingTasks(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PlannerSyncTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PlannerSyncTask
	query := transaction.WithContext(ctx).
		Where("status = ?", types.SyncTaskStatusPending).
		Order("created_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *plannerSyncRepo) MarkTaskDone(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.PlannerSyncTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":     types.SyncTaskStatusDone,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *plannerSyncRepo) RecordTaskFailure(ctx context.Context, tx *gorm.DB, taskID uuid.UUID, attempts int, lastError string, terminal bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	status := types.SyncTaskStatusPending
	if terminal {
		status = types.SyncTaskStatusFailed
	}
	return transaction.WithContext(ctx).
		Model(&types.PlannerSyncTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":     status,
			"attempts":   attempts,
			"last_error": lastError,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *plannerSyncRepo) GetState(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, eventDate string) (*types.PlannerSyncState, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.PlannerSyncState
	err := transaction.WithContext(ctx).
		Where("session_id = ? AND event_date = ?", sessionID, eventDate).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *plannerSyncRepo) UpsertState(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, eventDate string, appliedCount int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Upsert by unique session_id + event_date
	state := &types.PlannerSyncState{
		SessionID: sessionID,
		EventDate: eventDate,
	}
	if err := transaction.WithContext(ctx).
		Where("session_id = ? AND event_date = ?", sessionID, eventDate).
		First(state).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		state.ID = uuid.New()
		state.AppliedCount = appliedCount
		return transaction.WithContext(ctx).Create(state).Error
	}

	return transaction.WithContext(ctx).
		Model(&types.PlannerSyncState{}).
		Where("id = ?", state.ID).
		Updates(map[string]interface{}{
			"applied_count": appliedCount,
			"updated_at":    time.Now().UTC(),
		}).Error
}
