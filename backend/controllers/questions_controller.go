package controllers

import (
	"strconv"

	"examprep/backend/adaptive"
	"examprep/backend/config"
	"examprep/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuestionsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewQuestionsController(db *gorm.DB, cfg *config.Config) *QuestionsController {
	return &QuestionsController{DB: db, Cfg: cfg}
}

func (qc *QuestionsController) GetSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject
	if err := qc.DB.Find(&subjects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, subject := range subjects {
		result = append(result, fiber.Map{
			"id":   subject.ID,
			"name": subject.Name,
			"exam": subject.Exam,
		})
	}
	return c.JSON(result)
}

func (qc *QuestionsController) GetTopics(c *fiber.Ctx) error {
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subject ID",
		})
	}

	var topics []models.Topic
	if err := qc.DB.Where("subject_id = ?", subjectID).Find(&topics).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, topic := range topics {
		result = append(result, fiber.Map{
			"id":         topic.ID,
			"subject_id": topic.SubjectID,
			"name":       topic.Name,
		})
	}
	return c.JSON(result)
}

func (qc *QuestionsController) GetSubtopics(c *fiber.Ctx) error {
	topicID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid topic ID",
		})
	}

	var subtopics []models.Subtopic
	if err := qc.DB.Where("topic_id = ?", topicID).Find(&subtopics).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, subtopic := range subtopics {
		result = append(result, fiber.Map{
			"id":       subtopic.ID,
			"topic_id": subtopic.TopicID,
			"name":     subtopic.Name,
		})
	}
	return c.JSON(result)
}

// GetQuestions lists bank questions filtered by scope and difficulty,
// without correct answers.
func (qc *QuestionsController) GetQuestions(c *fiber.Ctx) error {
	query := qc.DB.Model(&models.Question{})

	if subject := c.Query("subject_id"); subject != "" {
		query = query.Where("subject_id = ?", subject)
	}
	if topic := c.Query("topic_id"); topic != "" {
		query = query.Where("topic_id = ?", topic)
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		if _, ok := adaptive.ParseDifficulty(difficulty); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid difficulty",
			})
		}
		query = query.Where("difficulty = ?", difficulty)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var questions []models.Question
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&questions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, q := range questions {
		result = append(result, fiber.Map{
			"id":                q.ID,
			"subject_id":        q.SubjectID,
			"topic_id":          q.TopicID,
			"text":              q.Text,
			"options":           q.OptionList(),
			"difficulty":        q.Difficulty,
			"estimated_seconds": q.EstimatedSeconds,
			"source":            q.Source,
		})
	}
	return c.JSON(result)
}

// AddQuestion creates a bank question. Admin only.
func (qc *QuestionsController) AddQuestion(c *fiber.Ctx) error {
	var input struct {
		SubjectID        uint     `json:"subject_id"`
		TopicID          uint     `json:"topic_id"`
		SubtopicID       *uint    `json:"subtopic_id"`
		Text             string   `json:"text"`
		Options          []string `json:"options"`
		CorrectAnswer    int      `json:"correct_answer"`
		Difficulty       string   `json:"difficulty"`
		EstimatedSeconds int      `json:"estimated_seconds"`
		Explanation      string   `json:"explanation"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if len(input.Options) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A question needs at least two options",
		})
	}
	if input.CorrectAnswer < 0 || input.CorrectAnswer >= len(input.Options) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid correct answer index",
		})
	}
	if _, ok := adaptive.ParseDifficulty(input.Difficulty); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid difficulty",
		})
	}

	question := models.Question{
		SubjectID:        input.SubjectID,
		TopicID:          input.TopicID,
		SubtopicID:       input.SubtopicID,
		Text:             input.Text,
		CorrectAnswer:    input.CorrectAnswer,
		Difficulty:       input.Difficulty,
		EstimatedSeconds: input.EstimatedSeconds,
		Explanation:      input.Explanation,
		Source:           "bank",
	}
	if err := question.SetOptions(input.Options); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not encode options",
		})
	}

	if err := qc.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create question",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Question added",
		"question": question,
	})
}
