package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Action is one generated daily task. Completed is tri-state: nil until the
// founder checks in, then true (done) or false (missed).
type Action struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	UserID         string     `gorm:"size:64;index:idx_actions_user_date;not null" json:"user_id"`
	Date           string     `gorm:"size:10;index:idx_actions_user_date;not null" json:"date"`
	Seq            int        `gorm:"not null" json:"-"`
	Text           string     `gorm:"size:300;not null" json:"text"`
	ImpactWeight   float64    `gorm:"not null" json:"impact_weight"`
	Difficulty     int        `gorm:"not null" json:"difficulty"`
	NonNegotiable  bool       `gorm:"not null;default:true" json:"non_negotiable"`
	Completed      *bool      `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// BeforeCreate assigns a uuid when none was provided.
func (a *Action) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}
