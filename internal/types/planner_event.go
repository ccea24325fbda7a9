package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventTypeSystemReview = "system_review"
	EventTypeUserTask     = "user_task"

	ContentTypeFlashcard     = "FLASHCARD"
	ContentTypeQuestion      = "QUESTION"
	ContentTypeErrorNotebook = "ERROR_NOTEBOOK"
	ContentTypeUserTask      = "USER_TASK"

	EventStatusPending    = "pending"
	EventStatusInProgress = "in_progress"
	EventStatusCompleted  = "completed"
)

// PlannerEvent is one calendar-scheduled study item: either a
// system-generated spaced-repetition batch or a user-authored task.
// Recurring events are stored once as a template; occurrences are
// materialized on query, never persisted.
type PlannerEvent struct {
	ID                uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID                `gorm:"type:uuid;not null;index:idx_planner_event_user_date" json:"user_id"`
	EventType         string                   `gorm:"column:event_type;not null" json:"event_type"`
	ContentType       string                   `gorm:"column:content_type;not null" json:"content_type"`
	Title             string                   `gorm:"column:title;not null" json:"title"`
	Description       string                   `gorm:"column:description" json:"description,omitempty"`
	// Dates are plain YYYY-MM-DD text so they round-trip exactly; a SQL
	// date column comes back as time.Time and breaks string comparison.
	Date              string                   `gorm:"column:date;not null;index:idx_planner_event_user_date" json:"date"`
	StartHour         int                      `gorm:"column:start_hour;not null;default:0" json:"start_hour"`
	StartMinute       int                      `gorm:"column:start_minute;not null;default:0" json:"start_minute"`
	EndHour           int                      `gorm:"column:end_hour;not null;default:0" json:"end_hour"`
	EndMinute         int                      `gorm:"column:end_minute;not null;default:0" json:"end_minute"`
	Status            string                   `gorm:"column:status;not null;default:'pending'" json:"status"`
	CompletedCount    int                      `gorm:"column:completed_count;not null;default:0" json:"completed_count"`
	TotalCount        int                      `gorm:"column:total_count;not null;default:0" json:"total_count"`
	CompletedAt       *time.Time               `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Color             string                   `gorm:"column:color" json:"color,omitempty"`
	Icon              string                   `gorm:"column:icon" json:"icon,omitempty"`
	IsRecurring       bool                     `gorm:"column:is_recurring;not null;default:false" json:"is_recurring"`
	RecurrenceDays    datatypes.JSONSlice[int] `gorm:"column:recurrence_days" json:"recurrence_days,omitempty"`
	RecurrenceEndDate *string                  `gorm:"column:recurrence_end_date" json:"recurrence_end_date,omitempty"`
	// ParentEventID points occurrences back to their template. Lookup only,
	// never enforced as a foreign key.
	ParentEventID *uuid.UUID `gorm:"column:parent_event_id;type:uuid" json:"parent_event_id,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (PlannerEvent) TableName() string { return "planner_event" }
