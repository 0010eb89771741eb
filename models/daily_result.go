package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyResult is the permanent scored record of one (user, date). A second
// check-in on the same day overwrites the row, it never duplicates it.
type DailyResult struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:64;uniqueIndex:idx_results_user_date;not null" json:"user_id"`
	Date        string    `gorm:"size:10;uniqueIndex:idx_results_user_date;not null" json:"date"`
	XPDelta     int       `gorm:"not null" json:"xp_delta"`
	Penalty     int       `gorm:"not null" json:"penalty"`
	VerdictText string    `gorm:"size:255;not null" json:"verdict_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns a uuid when none was provided.
func (r *DailyResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}
