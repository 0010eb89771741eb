package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"founder-engine/generator"
	"founder-engine/models"
	"founder-engine/utils"
)

// today formats the current calendar date the way actions and results key it.
func today() string {
	return time.Now().Format("2006-01-02")
}

// ActionController generates and lists the daily action batch.
type ActionController struct {
	db  *gorm.DB
	gen *generator.Generator
}

// NewActionController creates a new controller instance.
func NewActionController(db *gorm.DB, gen *generator.Generator) *ActionController {
	return &ActionController{db: db, gen: gen}
}

// GenerateToday produces today's action batch for a founder. Idempotent per
// calendar day: a second call returns the stored batch unchanged.
func (a *ActionController) GenerateToday(ctx *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "invalid payload: "+err.Error())
		return
	}

	day := today()

	var user models.User
	if err := a.db.First(&user, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, utils.CodeNotFound, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to load user")
		return
	}

	var actions []models.Action
	if err := a.db.Where("user_id = ? AND date = ?", req.UserID, day).
		Order("seq").Find(&actions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to load actions")
		return
	}
	if len(actions) > 0 {
		utils.Success(ctx, gin.H{"date": day, "actions": actions})
		return
	}

	history := a.historyDigest(req.UserID)
	candidates := a.gen.Generate(ctx.Request.Context(), user.GoalText, user.Difficulty, history)

	err := a.db.Transaction(func(tx *gorm.DB) error {
		// Another request may have generated the batch while the LLM call ran.
		var n int64
		if err := tx.Model(&models.Action{}).
			Where("user_id = ? AND date = ?", req.UserID, day).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for i, c := range candidates {
			action := models.Action{
				UserID:        req.UserID,
				Date:          day,
				Seq:           i,
				Text:          c.Text,
				ImpactWeight:  c.ImpactWeight,
				Difficulty:    c.Difficulty,
				NonNegotiable: true,
			}
			if err := tx.Create(&action).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to store actions")
		return
	}

	if err := a.db.Where("user_id = ? AND date = ?", req.UserID, day).
		Order("seq").Find(&actions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to load actions")
		return
	}

	utils.Success(ctx, gin.H{"date": day, "actions": actions})
}

// historyDigest summarizes the last 7 scored days for the generator prompt.
func (a *ActionController) historyDigest(userID string) string {
	var results []models.DailyResult
	if err := a.db.Where("user_id = ?", userID).
		Order("date DESC").Limit(7).Find(&results).Error; err != nil {
		return ""
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s: xpΔ=%d, pen=%d", r.Date, r.XPDelta, r.Penalty))
	}
	return strings.Join(parts, "; ")
}
