package models

import (
	"time"

	"gorm.io/gorm"
)

// User is one founder and the persistent progression state the judging step
// mutates. The id is caller-chosen and immutable; debt only ever grows.
type User struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	GoalText   string    `gorm:"size:280;not null" json:"goal_text"`
	Level      int       `gorm:"not null;default:1" json:"level"`
	XP         int       `gorm:"not null;default:0" json:"xp"`
	Streak     int       `gorm:"not null;default:0" json:"streak"`
	Debt       int       `gorm:"not null;default:0" json:"debt"`
	Difficulty int       `gorm:"not null;default:1" json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
