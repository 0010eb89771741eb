package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"founder-engine/models"
	"founder-engine/utils"
)

// UserController handles founder registration and lookup.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a new controller instance.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// Create registers a founder with an immutable id and a goal.
func (u *UserController) Create(ctx *gin.Context) {
	var req struct {
		UserID   string `json:"user_id" binding:"required,min=3,max=64"`
		GoalText string `json:"goal_text" binding:"required,min=5,max=280"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "invalid payload: "+err.Error())
		return
	}

	goal := strings.TrimSpace(utils.Sanitize(req.GoalText))
	if goal == "" {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "goal text is empty after sanitization")
		return
	}

	user := models.User{
		ID:         req.UserID,
		GoalText:   goal,
		Level:      1,
		XP:         0,
		Streak:     0,
		Debt:       0,
		Difficulty: 1,
	}

	// Let the primary key reject duplicates; a pre-check would race with a
	// concurrent create of the same id.
	if err := u.db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			utils.Error(ctx, http.StatusConflict, utils.CodeConflict, "user already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to create user")
		return
	}

	utils.Success(ctx, user)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}

// Get returns a founder's current progression state.
func (u *UserController) Get(ctx *gin.Context) {
	var user models.User
	if err := u.db.First(&user, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, utils.CodeNotFound, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to load user")
		return
	}
	utils.Success(ctx, user)
}
