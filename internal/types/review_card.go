package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	CardStateNew        = "new"
	CardStateLearning   = "learning"
	CardStateReview     = "review"
	CardStateRelearning = "relearning"
)

// ReviewCard is one spaced-repetition item. The scheduling core only reads
// its due date; the scheduling math that moves Due lives outside this repo.
type ReviewCard struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_review_card_user_due" json:"user_id"`
	ContentType string     `gorm:"column:content_type;not null" json:"content_type"`
	ContentID   string     `gorm:"column:content_id;not null" json:"content_id"`
	Due         time.Time  `gorm:"column:due;not null;index:idx_review_card_user_due" json:"due"`
	State       string     `gorm:"column:state;not null;default:'new'" json:"state"`
	Stability   float64    `gorm:"column:stability;not null;default:0" json:"stability"`
	Difficulty  float64    `gorm:"column:difficulty;not null;default:0" json:"difficulty"`
	Reps        int        `gorm:"column:reps;not null;default:0" json:"reps"`
	Lapses      int        `gorm:"column:lapses;not null;default:0" json:"lapses"`
	LastReview  *time.Time `gorm:"column:last_review" json:"last_review,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (ReviewCard) TableName() string { return "review_card" }

// DueDate returns the calendar day the card is scheduled for, UTC.
func (c *ReviewCard) DueDate() string {
	return c.Due.UTC().Format(time.DateOnly)
}
