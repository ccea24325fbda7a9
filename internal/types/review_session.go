package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusAbandoned = "abandoned"
)

// ReviewSession is a bounded, ordered batch of study items a user works
// through in one sitting, scoped to one content type and one calendar day.
// ReviewIDs is immutable after creation; CompletedIDs only grows.
type ReviewSession struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID                   `gorm:"type:uuid;not null;index:idx_review_session_slot" json:"user_id"`
	ContentType  string                      `gorm:"column:content_type;not null;index:idx_review_session_slot" json:"content_type"`
	Date         string                      `gorm:"column:date;not null;index:idx_review_session_slot" json:"date"`
	ReviewIDs    datatypes.JSONSlice[string] `gorm:"column:review_ids" json:"review_ids"`
	CompletedIDs datatypes.JSONSlice[string] `gorm:"column:completed_ids" json:"completed_ids"`
	CurrentIndex int                         `gorm:"column:current_index;not null;default:0" json:"current_index"`
	Status       string                      `gorm:"column:status;not null;default:'active'" json:"status"`
	StartedAt    time.Time                   `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt  *time.Time                  `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"not null" json:"updated_at"`
}

func (ReviewSession) TableName() string { return "review_session" }

// IsCompleted reports whether every review item has been marked done.
func (s *ReviewSession) IsCompleted() bool {
	return len(s.ReviewIDs) > 0 && len(s.CompletedIDs) >= len(s.ReviewIDs)
}

// HasCompleted reports whether itemID is already in CompletedIDs.
func (s *ReviewSession) HasCompleted(itemID string) bool {
	for _, id := range s.CompletedIDs {
		if id == itemID {
			return true
		}
	}
	return false
}
