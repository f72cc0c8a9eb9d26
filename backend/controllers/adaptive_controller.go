package controllers

import (
	"errors"
	"math"
	"strconv"
	"time"

	"examprep/backend/adaptive"
	"examprep/backend/config"
	"examprep/backend/models"
	"examprep/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionGenerator supplies AI-generated questions when the bank cannot
// satisfy a selection request. Optional collaborator; a nil generator means
// bank-only selection and never blocks session creation on its own.
type QuestionGenerator interface {
	Generate(subjectID uint, topicID, subtopicID *uint, difficulty adaptive.Difficulty, count int) ([]models.Question, error)
}

type AdaptiveController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Generator QuestionGenerator
}

func NewAdaptiveController(db *gorm.DB, cfg *config.Config) *AdaptiveController {
	return &AdaptiveController{DB: db, Cfg: cfg}
}

func (tc *AdaptiveController) thresholds() adaptive.Thresholds {
	return adaptive.Thresholds{
		Strength: tc.Cfg.StrengthThreshold,
		Weakness: tc.Cfg.WeaknessThreshold,
	}
}

// lockForUpdate takes a row lock on dialects that support it. SQLite (used
// in tests) serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// CreateSession godoc
// @Summary Create an adaptive test session
// @Description Selects questions for the scope and starts an ACTIVE session
// @Tags adaptive
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /adaptive/create-adaptive-test [post]
func (tc *AdaptiveController) CreateSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		SubjectID          uint   `json:"subject_id"`
		TopicID            *uint  `json:"topic_id"`
		SubtopicID         *uint  `json:"subtopic_id"`
		QuestionCount      int    `json:"question_count"`
		TimeLimitMinutes   int    `json:"time_limit_minutes"`
		StartingDifficulty string `json:"starting_difficulty"`
		AdaptiveMode       *bool  `json:"adaptive_mode"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.QuestionCount <= 0 {
		return utils.DomainError(c, adaptive.Errorf(adaptive.ErrInvalidConfig, "question count must be positive"))
	}
	if input.QuestionCount > tc.Cfg.MaxQuestionsPerSession {
		return utils.DomainError(c, adaptive.Errorf(adaptive.ErrInvalidConfig,
			"question count exceeds the limit of %d", tc.Cfg.MaxQuestionsPerSession))
	}
	if input.TimeLimitMinutes <= 0 {
		return utils.DomainError(c, adaptive.Errorf(adaptive.ErrInvalidConfig, "time limit must be positive"))
	}

	if input.StartingDifficulty == "" {
		input.StartingDifficulty = string(adaptive.Medium)
	}
	startingDifficulty, ok := adaptive.ParseDifficulty(input.StartingDifficulty)
	if !ok {
		return utils.DomainError(c, adaptive.Errorf(adaptive.ErrInvalidConfig,
			"unknown difficulty %q", input.StartingDifficulty))
	}

	adaptiveMode := true
	if input.AdaptiveMode != nil {
		adaptiveMode = *input.AdaptiveMode
	}

	var subject models.Subject
	if err := tc.DB.First(&subject, input.SubjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.DomainError(c, adaptive.Errorf(adaptive.ErrInvalidConfig, "unknown subject"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	questions, err := tc.selectQuestions(input.SubjectID, input.TopicID, input.SubtopicID,
		startingDifficulty, input.QuestionCount, nil)
	if err != nil {
		return utils.DomainError(c, err)
	}

	snapshot, err := tc.snapshotQuestions(tc.DB, questions)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not prepare questions",
		})
	}

	session := models.AdaptiveSession{
		Token:              uuid.NewString(),
		UserID:             userID,
		SubjectID:          input.SubjectID,
		TopicID:            input.TopicID,
		SubtopicID:         input.SubtopicID,
		Status:             models.SessionActive,
		QuestionCount:      len(snapshot),
		TimeLimitSeconds:   input.TimeLimitMinutes * 60,
		StartingDifficulty: string(startingDifficulty),
		AdaptiveMode:       adaptiveMode,
		CurrentIndex:       0,
		StartedAt:          time.Now(),
	}
	if err := session.SetQuestions(snapshot); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not prepare questions",
		})
	}
	if err := session.SetAnswers([]models.AnswerRecord{}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not prepare session",
		})
	}
	if err := session.SetDecisions([]models.DifficultyDecision{{
		QuestionIndex: 0,
		Difficulty:    string(startingDifficulty),
		Reason:        "starting difficulty for the session",
	}}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not prepare session",
		})
	}

	if err := tc.DB.Create(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create session",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Session created",
		"session": fiber.Map{
			"id":                  session.ID,
			"token":               session.Token,
			"status":              session.Status,
			"question_count":      session.QuestionCount,
			"time_limit_seconds":  session.TimeLimitSeconds,
			"starting_difficulty": session.StartingDifficulty,
			"adaptive_mode":       session.AdaptiveMode,
			"current_question":    publicQuestion(snapshot[0], 0),
		},
	})
}

// SubmitAnswer records one answer for the question at the current index,
// updates the running score, runs the adaptation policy and completes the
// session when the last question is answered or the time budget is gone.
func (tc *AdaptiveController) SubmitAnswer(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var input struct {
		QuestionID       uint `json:"question_id"`
		Answer           int  `json:"answer"`
		TimeSpentSeconds int  `json:"time_spent_seconds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	now := time.Now()
	var response fiber.Map

	txErr := tc.DB.Transaction(func(tx *gorm.DB) error {
		var session models.AdaptiveSession
		if err := lockForUpdate(tx).First(&session, sessionID).Error; err != nil {
			return err
		}
		if session.UserID != userID {
			return adaptive.ErrNotOwner
		}

		// Lazy expiry: an exhausted budget turns this call into an
		// auto-submit instead of recording the answer.
		if adaptive.Expired(&session, now) {
			result, err := tc.completeSession(tx, &session, models.CompletionTimeExpired, now)
			if err != nil {
				return err
			}
			response = fiber.Map{
				"message": "Time expired, test auto-submitted",
				"status":  session.Status,
				"result":  resultView(result),
			}
			return nil
		}

		if session.Status != models.SessionActive {
			return adaptive.Errorf(adaptive.ErrInvalidState,
				"cannot submit an answer to a %s session", session.Status)
		}

		questions := session.QuestionList()
		if session.CurrentIndex >= len(questions) {
			return adaptive.Errorf(adaptive.ErrInvalidState, "all questions have been answered")
		}
		current := questions[session.CurrentIndex]
		if current.QuestionID != input.QuestionID {
			return adaptive.Errorf(adaptive.ErrStaleQuestion,
				"expected an answer for question %d", current.QuestionID)
		}
		if input.Answer < 0 || input.Answer >= len(current.Options) {
			return adaptive.Errorf(adaptive.ErrInvalidAnswer,
				"option index %d is out of range", input.Answer)
		}

		// The client's timer is a hint only; never let a reported duration
		// exceed what is actually left of the budget.
		timeSpent := input.TimeSpentSeconds
		if timeSpent < 0 {
			timeSpent = 0
		}
		if remaining := adaptive.Remaining(&session, now); timeSpent > remaining {
			timeSpent = remaining
		}

		isCorrect := input.Answer == current.CorrectAnswer
		answers := append(session.AnswerList(), models.AnswerRecord{
			QuestionID:       current.QuestionID,
			Answer:           input.Answer,
			TimeSpentSeconds: timeSpent,
			IsCorrect:        isCorrect,
			Difficulty:       current.Difficulty,
			AnsweredAt:       now,
		})
		if err := session.SetAnswers(answers); err != nil {
			return err
		}

		correct := 0
		for _, a := range answers {
			if a.IsCorrect {
				correct++
			}
		}
		session.EstimatedScore = math.Round(100*float64(correct)/float64(len(answers))*100) / 100
		session.CurrentIndex++

		if session.CurrentIndex >= len(questions) {
			result, err := tc.completeSession(tx, &session, models.CompletionFinished, now)
			if err != nil {
				return err
			}
			response = fiber.Map{
				"message":    "Test completed",
				"status":     session.Status,
				"is_correct": isCorrect,
				"result":     resultView(result),
			}
			return nil
		}

		if session.AdaptiveMode {
			if err := tc.adaptNextQuestion(tx, &session, answers, questions); err != nil {
				return err
			}
			questions = session.QuestionList()
		}

		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		next := questions[session.CurrentIndex]
		response = fiber.Map{
			"message":           "Answer recorded",
			"is_correct":        isCorrect,
			"current_index":     session.CurrentIndex,
			"estimated_score":   session.EstimatedScore,
			"remaining_seconds": adaptive.Remaining(&session, now),
			"next_question":     publicQuestion(next, session.CurrentIndex),
		}
		return nil
	})

	if txErr != nil {
		return tc.sessionError(c, txErr)
	}
	return c.JSON(response)
}

// adaptNextQuestion applies the difficulty policy for the upcoming index
// and, when the target tier differs from the snapshotted question, swaps in
// an unused bank question at that tier. If none exists the snapshot is kept
// and the decision log says so.
func (tc *AdaptiveController) adaptNextQuestion(tx *gorm.DB, session *models.AdaptiveSession,
	answers []models.AnswerRecord, questions []models.SessionQuestion) error {

	currentTier := adaptive.Difficulty(answers[len(answers)-1].Difficulty)
	target, reason := adaptive.NextDifficulty(answers, currentTier)

	next := questions[session.CurrentIndex]
	if string(target) != next.Difficulty {
		used := make([]uint, 0, len(questions))
		for _, q := range questions {
			used = append(used, q.QuestionID)
		}

		var replacement models.Question
		query := tx.Where("subject_id = ? AND difficulty = ?", session.SubjectID, string(target))
		if session.TopicID != nil {
			query = query.Where("topic_id = ?", *session.TopicID)
		}
		if session.SubtopicID != nil {
			query = query.Where("subtopic_id = ?", *session.SubtopicID)
		}
		err := query.Where("id NOT IN ?", used).Order("RANDOM()").First(&replacement).Error
		if err == nil {
			snapshot, snapErr := tc.snapshotQuestions(tx, []models.Question{replacement})
			if snapErr != nil {
				return snapErr
			}
			questions[session.CurrentIndex] = snapshot[0]
			if setErr := session.SetQuestions(questions); setErr != nil {
				return setErr
			}
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			reason += " (no unused " + string(target) + " question available, keeping " + next.Difficulty + ")"
			target = adaptive.Difficulty(next.Difficulty)
		} else {
			return err
		}
	}

	decisions := append(session.DecisionList(), models.DifficultyDecision{
		QuestionIndex: session.CurrentIndex,
		Difficulty:    string(target),
		Reason:        reason,
	})
	return session.SetDecisions(decisions)
}

func (tc *AdaptiveController) PauseSession(c *fiber.Ctx) error {
	return tc.transition(c, func(session *models.AdaptiveSession, now time.Time) error {
		if session.Status != models.SessionActive {
			return adaptive.Errorf(adaptive.ErrInvalidState, "cannot pause a %s session", session.Status)
		}
		pausedAt := now
		session.PausedAt = &pausedAt
		session.Status = models.SessionPaused
		return nil
	}, "Session paused")
}

func (tc *AdaptiveController) ResumeSession(c *fiber.Ctx) error {
	return tc.transition(c, func(session *models.AdaptiveSession, now time.Time) error {
		if session.Status != models.SessionPaused {
			return adaptive.Errorf(adaptive.ErrInvalidState, "cannot resume a %s session", session.Status)
		}
		// The countdown continues from the frozen value, it is never reset.
		session.PausedSeconds += int(now.Sub(*session.PausedAt).Seconds())
		session.PausedAt = nil
		session.Status = models.SessionActive
		return nil
	}, "Session resumed")
}

// transition runs a locked read-modify-write for pause/resume. Lazy expiry
// runs first so an expired session completes instead of transitioning.
func (tc *AdaptiveController) transition(c *fiber.Ctx,
	mutate func(*models.AdaptiveSession, time.Time) error, message string) error {

	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	now := time.Now()
	var response fiber.Map

	txErr := tc.DB.Transaction(func(tx *gorm.DB) error {
		var session models.AdaptiveSession
		if err := lockForUpdate(tx).First(&session, sessionID).Error; err != nil {
			return err
		}
		if session.UserID != userID {
			return adaptive.ErrNotOwner
		}

		if adaptive.Expired(&session, now) {
			result, err := tc.completeSession(tx, &session, models.CompletionTimeExpired, now)
			if err != nil {
				return err
			}
			response = fiber.Map{
				"message": "Time expired, test auto-submitted",
				"status":  session.Status,
				"result":  resultView(result),
			}
			return nil
		}

		if err := mutate(&session, now); err != nil {
			return err
		}
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		response = fiber.Map{
			"message":           message,
			"status":            session.Status,
			"current_index":     session.CurrentIndex,
			"estimated_score":   session.EstimatedScore,
			"remaining_seconds": adaptive.Remaining(&session, now),
		}
		return nil
	})

	if txErr != nil {
		return tc.sessionError(c, txErr)
	}
	return c.JSON(response)
}

// GetSession is the poll endpoint. Besides reporting state it is the lazy
// expiry trigger for abandoned sessions: polling an over-budget ACTIVE
// session force-completes it.
func (tc *AdaptiveController) GetSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	now := time.Now()
	var response fiber.Map

	txErr := tc.DB.Transaction(func(tx *gorm.DB) error {
		var session models.AdaptiveSession
		if err := lockForUpdate(tx).First(&session, sessionID).Error; err != nil {
			return err
		}
		if session.UserID != userID {
			return adaptive.ErrNotOwner
		}

		if adaptive.Expired(&session, now) {
			if _, err := tc.completeSession(tx, &session, models.CompletionTimeExpired, now); err != nil {
				return err
			}
		}

		response = fiber.Map{
			"id":                session.ID,
			"token":             session.Token,
			"status":            session.Status,
			"question_count":    session.QuestionCount,
			"current_index":     session.CurrentIndex,
			"answered":          len(session.AnswerList()),
			"estimated_score":   session.EstimatedScore,
			"adaptive_mode":     session.AdaptiveMode,
			"remaining_seconds": adaptive.Remaining(&session, now),
			"started_at":        session.StartedAt,
			"completed_at":      session.CompletedAt,
			"completion_reason": session.CompletionReason,
			"difficulty_log":    session.DecisionList(),
		}
		if session.Status == models.SessionActive {
			questions := session.QuestionList()
			if session.CurrentIndex < len(questions) {
				response["current_question"] = publicQuestion(questions[session.CurrentIndex], session.CurrentIndex)
			}
		}
		return nil
	})

	if txErr != nil {
		return tc.sessionError(c, txErr)
	}
	return c.JSON(response)
}

// GetResult returns the aggregated result of a COMPLETED session. The
// aggregation is computed once and cached; repeated calls return the same
// row.
func (tc *AdaptiveController) GetResult(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var view fiber.Map
	txErr := tc.DB.Transaction(func(tx *gorm.DB) error {
		var session models.AdaptiveSession
		if err := lockForUpdate(tx).First(&session, sessionID).Error; err != nil {
			return err
		}
		if session.UserID != userID {
			return adaptive.ErrNotOwner
		}
		if session.Status != models.SessionCompleted {
			return adaptive.Errorf(adaptive.ErrInvalidState,
				"result is only available for a COMPLETED session, current status is %s", session.Status)
		}

		result, err := tc.cachedResult(tx, &session)
		if err != nil {
			return err
		}
		view = resultView(result)
		return nil
	})

	if txErr != nil {
		return tc.sessionError(c, txErr)
	}
	return c.JSON(fiber.Map{"result": view})
}

// GetUserSessions lists the caller's sessions, newest first.
func (tc *AdaptiveController) GetUserSessions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var sessions []models.AdaptiveSession
	if err := tc.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, session := range sessions {
		result = append(result, fiber.Map{
			"id":                  session.ID,
			"token":               session.Token,
			"subject_id":          session.SubjectID,
			"status":              session.Status,
			"question_count":      session.QuestionCount,
			"answered":            len(session.AnswerList()),
			"estimated_score":     session.EstimatedScore,
			"starting_difficulty": session.StartingDifficulty,
			"adaptive_mode":       session.AdaptiveMode,
			"started_at":          session.StartedAt,
			"completed_at":        session.CompletedAt,
		})
	}

	return c.JSON(result)
}

// completeSession is the single place a session reaches COMPLETED. It is
// idempotent: completing an already COMPLETED session returns the cached
// result untouched.
func (tc *AdaptiveController) completeSession(tx *gorm.DB, session *models.AdaptiveSession,
	reason string, now time.Time) (*models.AssessmentResult, error) {

	if session.Status == models.SessionCompleted {
		return tc.cachedResult(tx, session)
	}

	// Fold an open pause interval so time stats stay correct.
	if session.PausedAt != nil {
		session.PausedSeconds += int(now.Sub(*session.PausedAt).Seconds())
		session.PausedAt = nil
	}

	completedAt := now
	session.Status = models.SessionCompleted
	session.CompletedAt = &completedAt
	session.CompletionReason = reason

	if err := tx.Save(session).Error; err != nil {
		return nil, err
	}

	result, err := tc.cachedResult(tx, session)
	if err != nil {
		return nil, err
	}

	tc.recordCompletion(tx, session)
	return result, nil
}

// cachedResult returns the stored AssessmentResult for a completed session,
// computing and persisting it on first access.
func (tc *AdaptiveController) cachedResult(tx *gorm.DB, session *models.AdaptiveSession) (*models.AssessmentResult, error) {
	var existing models.AssessmentResult
	err := tx.Where("session_id = ?", session.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result, err := adaptive.Aggregate(session, tc.thresholds())
	if err != nil {
		return nil, err
	}
	if err := tx.Create(result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// recordCompletion bumps the owner's progress counters. Best effort; a
// failed update never fails the completion itself.
func (tc *AdaptiveController) recordCompletion(tx *gorm.DB, session *models.AdaptiveSession) {
	var progress models.UserProgress
	if err := tx.Where("user_id = ?", session.UserID).First(&progress).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		progress = models.UserProgress{UserID: session.UserID, LastActive: time.Now()}
	}
	progress.SessionsCompleted++
	progress.QuestionsAnswered += len(session.AnswerList())
	tx.Save(&progress)
}

// sessionError translates load/domain failures into responses.
func (tc *AdaptiveController) sessionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}
	var derr *adaptive.Error
	if errors.As(err, &derr) {
		return utils.DomainError(c, derr)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Could not process session",
	})
}

// selectQuestions pulls count questions for the scope at the requested
// tier, widening to adjacent tiers and finally the AI generator when the
// bank runs short.
func (tc *AdaptiveController) selectQuestions(subjectID uint, topicID, subtopicID *uint,
	difficulty adaptive.Difficulty, count int, exclude []uint) ([]models.Question, error) {

	scoped := func(tier adaptive.Difficulty, used []uint, limit int) ([]models.Question, error) {
		query := tc.DB.Where("subject_id = ? AND difficulty = ?", subjectID, string(tier))
		if topicID != nil {
			query = query.Where("topic_id = ?", *topicID)
		}
		if subtopicID != nil {
			query = query.Where("subtopic_id = ?", *subtopicID)
		}
		if len(used) > 0 {
			query = query.Where("id NOT IN ?", used)
		}
		var questions []models.Question
		err := query.Order("RANDOM()").Limit(limit).Find(&questions).Error
		return questions, err
	}

	selected, err := scoped(difficulty, exclude, count)
	if err != nil {
		return nil, err
	}

	used := append([]uint{}, exclude...)
	for _, q := range selected {
		used = append(used, q.ID)
	}

	for _, tier := range difficulty.Adjacent() {
		if len(selected) >= count {
			break
		}
		more, err := scoped(tier, used, count-len(selected))
		if err != nil {
			return nil, err
		}
		for _, q := range more {
			used = append(used, q.ID)
		}
		selected = append(selected, more...)
	}

	if len(selected) < count && tc.Generator != nil {
		generated, err := tc.Generator.Generate(subjectID, topicID, subtopicID, difficulty, count-len(selected))
		if err == nil {
			for i := range generated {
				generated[i].Source = "ai"
				if tc.DB.Create(&generated[i]).Error == nil {
					selected = append(selected, generated[i])
				}
			}
		}
		// A failing generator degrades to bank-only selection.
	}

	if len(selected) < count {
		return nil, adaptive.Errorf(adaptive.ErrNoQuestions,
			"only %d of %d requested questions available for this scope", len(selected), count)
	}

	return selected, nil
}

// snapshotQuestions freezes bank questions into session snapshots with
// their topic names resolved. db is the caller's handle so snapshots taken
// inside a transaction read through it.
func (tc *AdaptiveController) snapshotQuestions(db *gorm.DB, questions []models.Question) ([]models.SessionQuestion, error) {
	topicIDs := make([]uint, 0, len(questions))
	for _, q := range questions {
		topicIDs = append(topicIDs, q.TopicID)
	}

	topicNames := make(map[uint]string, len(topicIDs))
	if len(topicIDs) > 0 {
		var topics []models.Topic
		if err := db.Where("id IN ?", topicIDs).Find(&topics).Error; err != nil {
			return nil, err
		}
		for _, t := range topics {
			topicNames[t.ID] = t.Name
		}
	}

	snapshot := make([]models.SessionQuestion, 0, len(questions))
	for _, q := range questions {
		snapshot = append(snapshot, models.SessionQuestion{
			QuestionID:       q.ID,
			Text:             q.Text,
			Options:          q.OptionList(),
			CorrectAnswer:    q.CorrectAnswer,
			Difficulty:       q.Difficulty,
			TopicID:          q.TopicID,
			TopicName:        topicNames[q.TopicID],
			EstimatedSeconds: q.EstimatedSeconds,
		})
	}
	return snapshot, nil
}

// publicQuestion strips the correct answer before a question leaves the
// server.
func publicQuestion(q models.SessionQuestion, index int) fiber.Map {
	return fiber.Map{
		"index":             index,
		"question_id":       q.QuestionID,
		"text":              q.Text,
		"options":           q.Options,
		"difficulty":        q.Difficulty,
		"topic":             q.TopicName,
		"estimated_seconds": q.EstimatedSeconds,
	}
}

func resultView(r *models.AssessmentResult) fiber.Map {
	return fiber.Map{
		"session_id":           r.SessionID,
		"total_questions":      r.TotalQuestions,
		"correct_answers":      r.CorrectAnswers,
		"incorrect_answers":    r.TotalQuestions - r.CorrectAnswers,
		"score":                r.Score,
		"time_spent_seconds":   r.TimeSpentSeconds,
		"average_time_seconds": r.AverageTimeSeconds,
		"difficulty_breakdown": r.DifficultyBreakdown(),
		"topic_breakdown":      r.TopicBreakdown(),
		"strengths":            r.StrengthList(),
		"weaknesses":           r.WeaknessList(),
		"recommendations":      r.RecommendationList(),
		"confidence":           r.Confidence,
		"completion_reason":    r.CompletionReason,
	}
}
