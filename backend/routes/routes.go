package routes

import (
	"examprep/backend/config"
	"examprep/backend/controllers"
	"examprep/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)

	// Question bank routes
	questionsController := controllers.NewQuestionsController(db, cfg)
	app.Get("/api/subjects", authMiddleware, questionsController.GetSubjects)
	app.Get("/api/subjects/:id/topics", authMiddleware, questionsController.GetTopics)
	app.Get("/api/topics/:id/subtopics", authMiddleware, questionsController.GetSubtopics)
	app.Get("/api/questions", authMiddleware, questionsController.GetQuestions)

	// Adaptive test routes
	adaptiveController := controllers.NewAdaptiveController(db, cfg)
	adaptiveTests := app.Group("/api/adaptive", authMiddleware)
	adaptiveTests.Post("/create-adaptive-test", adaptiveController.CreateSession)
	adaptiveTests.Get("/sessions", adaptiveController.GetUserSessions)
	adaptiveTests.Get("/:id", adaptiveController.GetSession)
	adaptiveTests.Post("/:id/submit-answer", adaptiveController.SubmitAnswer)
	adaptiveTests.Post("/:id/pause", adaptiveController.PauseSession)
	adaptiveTests.Post("/:id/resume", adaptiveController.ResumeSession)
	adaptiveTests.Get("/:id/result", adaptiveController.GetResult)

	// Admin routes
	analyticsController := controllers.NewAnalyticsController(db, cfg)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/questions", questionsController.AddQuestion)
	admin.Get("/adaptive/sessions", analyticsController.GetSessionAnalytics)
	admin.Get("/stats", analyticsController.GetPlatformStats)
}
