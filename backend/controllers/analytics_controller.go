package controllers

import (
	"math"

	"examprep/backend/config"
	"examprep/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg}
}

// GetSessionAnalytics lists every session with its owner and result, for
// the admin dashboard.
func (ac *AnalyticsController) GetSessionAnalytics(c *fiber.Ctx) error {
	var sessions []models.AdaptiveSession
	if err := ac.DB.Order("created_at DESC").Limit(200).Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var rows []fiber.Map
	for _, session := range sessions {
		var user models.User
		if err := ac.DB.First(&user, session.UserID).Error; err != nil {
			continue
		}

		row := fiber.Map{
			"session_id":      session.ID,
			"user_id":         user.ID,
			"username":        user.Username,
			"subject_id":      session.SubjectID,
			"status":          session.Status,
			"question_count":  session.QuestionCount,
			"answered":        len(session.AnswerList()),
			"estimated_score": session.EstimatedScore,
			"adaptive_mode":   session.AdaptiveMode,
			"started_at":      session.StartedAt,
		}

		var result models.AssessmentResult
		if err := ac.DB.Where("session_id = ?", session.ID).First(&result).Error; err == nil {
			row["score"] = result.Score
			row["confidence"] = result.Confidence
			row["completion_reason"] = result.CompletionReason
		}

		rows = append(rows, row)
	}

	return c.JSON(fiber.Map{
		"analytics": rows,
	})
}

// GetPlatformStats returns platform-wide counters for the admin dashboard.
func (ac *AnalyticsController) GetPlatformStats(c *fiber.Ctx) error {
	var stats models.PlatformStats

	ac.DB.Model(&models.User{}).Count(&stats.TotalUsers)
	ac.DB.Model(&models.AdaptiveSession{}).Count(&stats.SessionsCreated)
	ac.DB.Model(&models.AdaptiveSession{}).
		Where("status = ?", models.SessionCompleted).
		Count(&stats.SessionsCompleted)

	var avgScore float64
	ac.DB.Model(&models.AssessmentResult{}).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avgScore)
	stats.AverageScore = math.Round(avgScore*100) / 100

	return c.JSON(stats)
}
