package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	SyncTaskStatusPending = "pending"
	SyncTaskStatusDone    = "done"
	SyncTaskStatusFailed  = "failed"
)

// PlannerSyncTask is an outbox row: one pending reconciliation of a review
// session into its planner events, processed asynchronously with retry.
type PlannerSyncTask struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Status    string    `gorm:"column:status;not null;default:'pending';index" json:"status"`
	Attempts  int       `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastError string    `gorm:"column:last_error" json:"last_error,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PlannerSyncTask) TableName() string { return "planner_sync_task" }

// PlannerSyncState records how many of a session's completions have already
// been applied to the planner event of one due date. Reconciliation applies
// only the delta above AppliedCount, so re-running over the same snapshot is
// a no-op.
type PlannerSyncState struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID    uuid.UUID `gorm:"type:uuid;not null;index:idx_sync_state_session_date,unique" json:"session_id"`
	EventDate    string    `gorm:"column:event_date;not null;index:idx_sync_state_session_date,unique" json:"event_date"`
	AppliedCount int       `gorm:"column:applied_count;not null;default:0" json:"applied_count"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (PlannerSyncState) TableName() string { return "planner_sync_state" }
