package controllers

import (
	"math"
	"time"

	"examprep/backend/config"
	"examprep/backend/models"
	"examprep/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns streak, totals and the last 4 months of results
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} models.ProgressOverview
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var progress models.UserProgress
	pc.DB.Where("user_id = ?", userID).First(&progress)

	var avgScore float64
	pc.DB.Model(&models.AssessmentResult{}).
		Where("user_id = ?", userID).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avgScore)

	// Last 4 months of completed sessions
	now := time.Now()
	months := make([]models.MonthlyProgress, 0, 4)
	for i := 0; i < 4; i++ {
		month := now.AddDate(0, -i, 0)
		startOfMonth := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
		endOfMonth := startOfMonth.AddDate(0, 1, 0)

		var completed int64
		pc.DB.Model(&models.AssessmentResult{}).
			Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, startOfMonth, endOfMonth).
			Count(&completed)

		var monthlyAvg float64
		pc.DB.Model(&models.AssessmentResult{}).
			Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, startOfMonth, endOfMonth).
			Select("COALESCE(AVG(score), 0)").
			Scan(&monthlyAvg)

		months = append(months, models.MonthlyProgress{
			Month:             month.Month(),
			Year:              month.Year(),
			SessionsCompleted: completed,
			AverageScore:      math.Round(monthlyAvg*100) / 100,
		})
	}

	return c.JSON(models.ProgressOverview{
		StreakDays:        progress.StreakDays,
		SessionsCompleted: progress.SessionsCompleted,
		QuestionsAnswered: progress.QuestionsAnswered,
		AverageScore:      math.Round(avgScore*100) / 100,
		MonthlyProgress:   months,
	})
}
