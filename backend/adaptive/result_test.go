package adaptive

import (
	"testing"
	"time"

	"examprep/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testThresholds = Thresholds{Strength: 0.80, Weakness: 0.50}

func completedSession(t *testing.T, questions []models.SessionQuestion, answers []models.AnswerRecord) *models.AdaptiveSession {
	t.Helper()
	completedAt := time.Now()
	session := &models.AdaptiveSession{
		Status:           models.SessionCompleted,
		QuestionCount:    len(questions),
		CurrentIndex:     len(answers),
		CompletedAt:      &completedAt,
		CompletionReason: models.CompletionFinished,
	}
	require.NoError(t, session.SetQuestions(questions))
	require.NoError(t, session.SetAnswers(answers))
	return session
}

func TestAggregateTotalsAndScore(t *testing.T) {
	questions := []models.SessionQuestion{
		{QuestionID: 1, TopicName: "Algebra", Difficulty: "MEDIUM"},
		{QuestionID: 2, TopicName: "Algebra", Difficulty: "MEDIUM"},
		{QuestionID: 3, TopicName: "Optics", Difficulty: "HARD"},
		{QuestionID: 4, TopicName: "Optics", Difficulty: "MEDIUM"},
		{QuestionID: 5, TopicName: "Algebra", Difficulty: "MEDIUM"},
	}
	answers := []models.AnswerRecord{
		{QuestionID: 1, IsCorrect: true, Difficulty: "MEDIUM", TimeSpentSeconds: 30},
		{QuestionID: 2, IsCorrect: true, Difficulty: "MEDIUM", TimeSpentSeconds: 45},
		{QuestionID: 3, IsCorrect: false, Difficulty: "HARD", TimeSpentSeconds: 90},
		{QuestionID: 4, IsCorrect: true, Difficulty: "MEDIUM", TimeSpentSeconds: 40},
		{QuestionID: 5, IsCorrect: true, Difficulty: "MEDIUM", TimeSpentSeconds: 35},
	}

	result, err := Aggregate(completedSession(t, questions, answers), testThresholds)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalQuestions)
	assert.Equal(t, 4, result.CorrectAnswers)
	assert.Equal(t, float64(80), result.Score)
	assert.Equal(t, 240, result.TimeSpentSeconds)
	assert.Equal(t, float64(48), result.AverageTimeSeconds)

	difficulty := result.DifficultyBreakdown()
	assert.Equal(t, models.TierStats{Correct: 4, Total: 4}, difficulty["MEDIUM"])
	assert.Equal(t, models.TierStats{Correct: 0, Total: 1}, difficulty["HARD"])

	topics := result.TopicBreakdown()
	assert.Equal(t, models.TierStats{Correct: 3, Total: 3}, topics["Algebra"])
	assert.Equal(t, models.TierStats{Correct: 1, Total: 2}, topics["Optics"])
}

func TestAggregateStrengthsAndWeaknesses(t *testing.T) {
	questions := []models.SessionQuestion{
		{QuestionID: 1, TopicName: "Algebra", Difficulty: "EASY"},
		{QuestionID: 2, TopicName: "Algebra", Difficulty: "EASY"},
		{QuestionID: 3, TopicName: "Mechanics", Difficulty: "HARD"},
		{QuestionID: 4, TopicName: "Mechanics", Difficulty: "HARD"},
	}
	answers := []models.AnswerRecord{
		{QuestionID: 1, IsCorrect: true, Difficulty: "EASY"},
		{QuestionID: 2, IsCorrect: true, Difficulty: "EASY"},
		{QuestionID: 3, IsCorrect: false, Difficulty: "HARD"},
		{QuestionID: 4, IsCorrect: false, Difficulty: "HARD"},
	}

	result, err := Aggregate(completedSession(t, questions, answers), testThresholds)
	require.NoError(t, err)

	strengths := result.StrengthList()
	weaknesses := result.WeaknessList()
	recommendations := result.RecommendationList()

	assert.Contains(t, strengths, "Strong performance on EASY questions (100%)")
	assert.Contains(t, strengths, "Strong grasp of Algebra (100%)")
	assert.Contains(t, weaknesses, "Struggled with HARD questions (0%)")
	assert.Contains(t, weaknesses, "Needs work on Mechanics (0%)")
	assert.Contains(t, recommendations, "Practice more HARD questions before moving to a higher difficulty")
	assert.Contains(t, recommendations, "Revise Mechanics and retry a focused practice set")
}

func TestAggregateDeterministic(t *testing.T) {
	questions := []models.SessionQuestion{
		{QuestionID: 1, TopicName: "Algebra", Difficulty: "MEDIUM"},
		{QuestionID: 2, TopicName: "Optics", Difficulty: "MEDIUM"},
	}
	answers := []models.AnswerRecord{
		{QuestionID: 1, IsCorrect: true, Difficulty: "MEDIUM", TimeSpentSeconds: 10},
		{QuestionID: 2, IsCorrect: false, Difficulty: "MEDIUM", TimeSpentSeconds: 20},
	}
	session := completedSession(t, questions, answers)

	first, err := Aggregate(session, testThresholds)
	require.NoError(t, err)
	second, err := Aggregate(session, testThresholds)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.DifficultyStats, second.DifficultyStats)
	assert.Equal(t, first.TopicStats, second.TopicStats)
	assert.Equal(t, first.Strengths, second.Strengths)
	assert.Equal(t, first.Weaknesses, second.Weaknesses)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestAggregateTimedOutWithoutAnswers(t *testing.T) {
	questions := []models.SessionQuestion{
		{QuestionID: 1, TopicName: "Algebra", Difficulty: "MEDIUM"},
		{QuestionID: 2, TopicName: "Algebra", Difficulty: "MEDIUM"},
	}
	session := completedSession(t, questions, nil)
	session.CompletionReason = models.CompletionTimeExpired

	result, err := Aggregate(session, testThresholds)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 0, result.CorrectAnswers)
	assert.Equal(t, float64(0), result.Score)
	assert.Equal(t, float64(0), result.Confidence)
	assert.Equal(t, models.CompletionTimeExpired, result.CompletionReason)
}

func TestAggregateRejectsActiveSession(t *testing.T) {
	session := &models.AdaptiveSession{Status: models.SessionActive}
	_, err := Aggregate(session, testThresholds)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestConfidenceGrowsWithSampleSize(t *testing.T) {
	few := map[string]models.TierStats{"MEDIUM": {Correct: 2, Total: 3}}
	many := map[string]models.TierStats{"MEDIUM": {Correct: 8, Total: 12}}

	assert.Less(t, confidence(3, few), confidence(12, many))
}

func TestConfidencePenalizesInconsistency(t *testing.T) {
	consistent := map[string]models.TierStats{
		"EASY":   {Correct: 4, Total: 5},
		"MEDIUM": {Correct: 4, Total: 5},
	}
	erratic := map[string]models.TierStats{
		"EASY":   {Correct: 5, Total: 5},
		"MEDIUM": {Correct: 0, Total: 5},
	}

	assert.Greater(t, confidence(10, consistent), confidence(10, erratic))
}
