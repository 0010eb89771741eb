package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"founder-engine/engine"
	"founder-engine/models"
	"founder-engine/utils"
)

// CheckInController records the day's outcome, judges it, and serves history.
type CheckInController struct {
	db *gorm.DB
}

var (
	errUserNotFound   = errors.New("user not found")
	errNoActionsToday = errors.New("no actions generated for today")
)

// NewCheckInController creates a new controller instance.
func NewCheckInController(db *gorm.DB) *CheckInController {
	return &CheckInController{db: db}
}

type actionUpdate struct {
	ActionID  string `json:"action_id" binding:"required"`
	Completed bool   `json:"completed"`
}

// CheckIn applies the founder's completion marks to today's actions, runs the
// judging step, and persists the new user state plus the day's result as one
// transaction. Updates naming unknown action ids are silently ignored.
func (c *CheckInController) CheckIn(ctx *gin.Context) {
	var req struct {
		UserID  string         `json:"user_id" binding:"required"`
		Updates []actionUpdate `json:"updates" binding:"dive"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "invalid payload: "+err.Error())
		return
	}

	day := today()
	now := time.Now()

	var judgement engine.Judgement
	var actions []models.Action

	// SQLite serializes writers, so the transaction alone makes the
	// read-judge-write sequence atomic against a concurrent check-in.
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUserNotFound
			}
			return err
		}

		if err := tx.Where("user_id = ? AND date = ?", req.UserID, day).
			Order("seq").Find(&actions).Error; err != nil {
			return err
		}
		if len(actions) == 0 {
			return errNoActionsToday
		}

		known := make(map[string]bool, len(actions))
		for _, a := range actions {
			known[a.ID] = true
		}
		for _, upd := range req.Updates {
			if !known[upd.ActionID] {
				continue
			}
			completed := upd.Completed
			if err := tx.Model(&models.Action{}).Where("id = ?", upd.ActionID).
				Updates(map[string]interface{}{
					"completed":    &completed,
					"completed_at": now,
				}).Error; err != nil {
				return err
			}
		}

		// Re-read so the counts reflect what actually got written.
		if err := tx.Where("user_id = ? AND date = ?", req.UserID, day).
			Order("seq").Find(&actions).Error; err != nil {
			return err
		}

		completed, missed := 0, 0
		impactsSum := 0.0
		for _, a := range actions {
			if a.Completed == nil {
				continue
			}
			if *a.Completed {
				completed++
				impactsSum += a.ImpactWeight
			} else {
				missed++
			}
		}

		judgement = engine.JudgeDay(engine.DayInput{
			CurrentXP:         user.XP,
			CurrentStreak:     user.Streak,
			CurrentDebt:       user.Debt,
			CurrentDifficulty: user.Difficulty,
			Completed:         completed,
			Missed:            missed,
			ImpactsSum:        impactsSum,
		})

		result := models.DailyResult{
			UserID:      req.UserID,
			Date:        day,
			XPDelta:     judgement.XPDelta,
			Penalty:     judgement.Penalty,
			VerdictText: judgement.Verdict,
			CreatedAt:   now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"xp_delta", "penalty", "verdict_text", "created_at"}),
		}).Create(&result).Error; err != nil {
			return err
		}

		return tx.Model(&user).Updates(map[string]interface{}{
			"xp":         judgement.NewXP,
			"level":      judgement.NewLevel,
			"streak":     judgement.NewStreak,
			"debt":       judgement.NewDebt,
			"difficulty": judgement.NewDifficulty,
		}).Error
	})

	switch {
	case errors.Is(err, errUserNotFound):
		utils.Error(ctx, http.StatusNotFound, utils.CodeNotFound, err.Error())
		return
	case errors.Is(err, errNoActionsToday):
		utils.Error(ctx, http.StatusBadRequest, utils.CodeNoActionsYet, "no actions for today, generate first")
		return
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to record check-in")
		return
	}

	utils.Success(ctx, gin.H{
		"date":       day,
		"xp_delta":   judgement.XPDelta,
		"penalty":    judgement.Penalty,
		"xp":         judgement.NewXP,
		"level":      judgement.NewLevel,
		"streak":     judgement.NewStreak,
		"debt":       judgement.NewDebt,
		"difficulty": judgement.NewDifficulty,
		"verdict":    judgement.Verdict,
		"actions":    actions,
	})
}

// History returns up to the 30 most recent daily results, newest first.
func (c *CheckInController) History(ctx *gin.Context) {
	userID := ctx.Param("id")

	var user models.User
	if err := c.db.Select("id").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, utils.CodeNotFound, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to load user")
		return
	}

	var results []models.DailyResult
	if err := c.db.Where("user_id = ?", userID).
		Order("date DESC").Limit(30).Find(&results).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to load history")
		return
	}
	if results == nil {
		results = []models.DailyResult{}
	}

	utils.Success(ctx, gin.H{"results": results})
}
