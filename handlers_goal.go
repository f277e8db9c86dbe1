package main

import (
	"net/http"
	"strconv"
	"time"

	"dompet/models"
	"dompet/pkg/allocation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func createGoalHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name         string          `json:"name" binding:"required"`
		TargetAmount decimal.Decimal `json:"target_amount"`
		Deadline     string          `json:"deadline"` // optional ISO8601
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.TargetAmount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_amount must be > 0"})
		return
	}
	goal := models.Goal{UserID: user.ID, Name: req.Name, TargetAmount: req.TargetAmount}
	if req.Deadline != "" {
		if t, err := time.Parse(time.RFC3339, req.Deadline); err == nil {
			goal.Deadline = &t
		}
	}
	if err := db.Create(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": goal.ID})
}

func listGoalsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var goals []models.Goal
	if err := db.Where("user_id = ?", user.ID).Order("id").Find(&goals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, goals)
}

// goalProgressHandler reads the Tabungan bucket balance against the target.
// Goals are a read-only consumer of allocation totals; they never mutate them.
func goalProgressHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var goal models.Goal
	if err := db.First(&goal, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if goal.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	store := allocation.NewStore(db)
	saved := decimal.Zero
	if alloc, err := store.UserAllocationByType(user.ID, models.TypeTabungan, 0); err == nil && alloc != nil {
		saved = alloc.BalancePerType
	}
	percent := decimal.Zero
	if goal.TargetAmount.IsPositive() {
		percent = saved.Div(goal.TargetAmount).Mul(decimal.NewFromInt(100)).Round(1)
		if percent.GreaterThan(decimal.NewFromInt(100)) {
			percent = decimal.NewFromInt(100)
		}
	}
	achieved := saved.GreaterThanOrEqual(goal.TargetAmount)
	if achieved && !goal.Achieved {
		goal.Achieved = true
		db.Save(&goal)
	}

	c.JSON(http.StatusOK, gin.H{
		"goal":     goal,
		"saved":    saved,
		"percent":  percent,
		"achieved": achieved,
	})
}

func listBadgesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var earned []models.UserBadge
	if err := db.Preload("Badge").Where("user_id = ?", user.ID).Order("id").Find(&earned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, earned)
}
