package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"founder-engine/models"
	"founder-engine/utils"
)

// StatsController provides aggregate counters across all founders.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the engine.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var resultCount int64
	var completedToday int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.DailyResult{}).Count(&resultCount).Error; err != nil {
		resultCount = 0
	}

	if err := s.db.Model(&models.Action{}).
		Where("date = ? AND completed = ?", today(), true).
		Count(&completedToday).Error; err != nil {
		completedToday = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":              userCount,
		"result_count":            resultCount,
		"actions_completed_today": completedToday,
	})
}
