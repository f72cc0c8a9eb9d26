package controllers_test

import (
	"testing"
	"time"

	"examprep/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionRejectsBadConfig(t *testing.T) {
	resp := doRequest(t, "POST", "/api/adaptive/create-adaptive-test", studentToken, map[string]interface{}{
		"subject_id":         physicsID,
		"question_count":     0,
		"time_limit_minutes": 10,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid_config", body["code"])

	resp = doRequest(t, "POST", "/api/adaptive/create-adaptive-test", studentToken, map[string]interface{}{
		"subject_id":          physicsID,
		"question_count":      5,
		"time_limit_minutes":  10,
		"starting_difficulty": "EXTREME",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "invalid_config", body["code"])

	resp = doRequest(t, "POST", "/api/adaptive/create-adaptive-test", studentToken, map[string]interface{}{
		"subject_id":         physicsID,
		"question_count":     5,
		"time_limit_minutes": 0,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateSessionFailsWhenBankCannotSatisfyScope(t *testing.T) {
	resp := doRequest(t, "POST", "/api/adaptive/create-adaptive-test", studentToken, map[string]interface{}{
		"subject_id":         physicsID,
		"topic_id":           emptyTopic,
		"question_count":     5,
		"time_limit_minutes": 10,
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "no_questions_available", body["code"])
}

// The contract scenario: five questions from MEDIUM with adaptive mode on,
// answered correct, correct, incorrect, correct, correct. The difficulty
// progression must be MEDIUM, MEDIUM, HARD, MEDIUM, MEDIUM and the final
// score 80.
func TestAdaptiveFlowContractScenario(t *testing.T) {
	session := createSession(t, 5, 30, true, "MEDIUM")
	questionID := currentQuestionID(t, session, "current_question")

	outcomes := []bool{true, true, false, true, true}
	var lastBody map[string]interface{}
	for i, correct := range outcomes {
		answer := 1
		if !correct {
			answer = 2
		}
		body, status := submitAnswer(t, session, questionID, answer, 30)
		require.Equal(t, fiber.StatusOK, status)
		lastBody = body

		if i < len(outcomes)-1 {
			questionID = currentQuestionID(t, body, "next_question")
		}
	}

	assert.Equal(t, "Test completed", lastBody["message"])
	result := lastBody["result"].(map[string]interface{})
	assert.Equal(t, float64(80), result["score"])
	assert.Equal(t, float64(4), result["correct_answers"])
	assert.Equal(t, float64(1), result["incorrect_answers"])
	assert.Equal(t, models.CompletionFinished, result["completion_reason"])

	// Difficulty progression from the decision log
	resp := doRequest(t, "GET", sessionPath(session, ""), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	state := decodeBody(t, resp)
	assert.Equal(t, string(models.SessionCompleted), state["status"])

	decisions := state["difficulty_log"].([]interface{})
	require.Len(t, decisions, 5)
	expected := []string{"MEDIUM", "MEDIUM", "HARD", "MEDIUM", "MEDIUM"}
	for i, raw := range decisions {
		decision := raw.(map[string]interface{})
		assert.Equal(t, float64(i), decision["question_index"])
		assert.Equal(t, expected[i], decision["difficulty"], "decision for question %d", i)
	}

	// The escalated question was answered (incorrectly) at HARD
	breakdown := result["difficulty_breakdown"].(map[string]interface{})
	hard := breakdown["HARD"].(map[string]interface{})
	assert.Equal(t, float64(1), hard["total"])
	assert.Equal(t, float64(0), hard["correct"])
}

func TestFixedModeKeepsStartingDifficulty(t *testing.T) {
	session := createSession(t, 3, 30, false, "EASY")
	questionID := currentQuestionID(t, session, "current_question")

	for i := 0; i < 3; i++ {
		body, status := submitAnswer(t, session, questionID, 1, 20)
		require.Equal(t, fiber.StatusOK, status)
		if i < 2 {
			question := body["next_question"].(map[string]interface{})
			assert.Equal(t, "EASY", question["difficulty"])
			questionID = uint(question["question_id"].(float64))
		}
	}

	var stored models.AdaptiveSession
	require.NoError(t, db.First(&stored, uint(session["id"].(float64))).Error)
	for _, q := range stored.QuestionList() {
		assert.Equal(t, "EASY", q.Difficulty)
	}
	// Only the seed decision is logged when adaptation is off
	assert.Len(t, stored.DecisionList(), 1)
}

func TestSubmitRejectsStaleQuestion(t *testing.T) {
	session := createSession(t, 3, 30, true, "MEDIUM")
	body, status := submitAnswer(t, session, 999999, 1, 10)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "stale_question", body["code"])
}

func TestSubmitRejectsOutOfRangeOption(t *testing.T) {
	session := createSession(t, 3, 30, true, "MEDIUM")
	questionID := currentQuestionID(t, session, "current_question")

	body, status := submitAnswer(t, session, questionID, 99, 10)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_answer", body["code"])

	body, status = submitAnswer(t, session, questionID, -1, 10)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_answer", body["code"])
}

func TestSessionOwnershipEnforced(t *testing.T) {
	session := createSession(t, 3, 30, true, "MEDIUM")

	resp := doRequest(t, "GET", sessionPath(session, ""), otherToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "not_owner", body["code"])

	resp = doRequest(t, "POST", sessionPath(session, "/pause"), otherToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestPauseResumePreservesState(t *testing.T) {
	session := createSession(t, 3, 30, true, "MEDIUM")
	questionID := currentQuestionID(t, session, "current_question")

	_, status := submitAnswer(t, session, questionID, 1, 25)
	require.Equal(t, fiber.StatusOK, status)

	resp := doRequest(t, "POST", sessionPath(session, "/pause"), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	paused := decodeBody(t, resp)
	assert.Equal(t, string(models.SessionPaused), paused["status"])

	// Submitting while paused fails and must not mutate anything
	body, status := submitAnswer(t, session, questionID, 1, 10)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "invalid_state", body["code"])

	var stored models.AdaptiveSession
	require.NoError(t, db.First(&stored, uint(session["id"].(float64))).Error)
	assert.Equal(t, 1, stored.CurrentIndex)
	assert.Len(t, stored.AnswerList(), 1)
	assert.Equal(t, float64(100), stored.EstimatedScore)

	// Pausing twice is rejected
	resp = doRequest(t, "POST", sessionPath(session, "/pause"), studentToken, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = doRequest(t, "POST", sessionPath(session, "/resume"), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resumed := decodeBody(t, resp)
	assert.Equal(t, string(models.SessionActive), resumed["status"])
	assert.Equal(t, float64(1), resumed["current_index"])
	assert.Equal(t, float64(100), resumed["estimated_score"])
}

func TestResumeRequiresPausedSession(t *testing.T) {
	session := createSession(t, 3, 30, true, "MEDIUM")
	resp := doRequest(t, "POST", sessionPath(session, "/resume"), studentToken, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid_state", body["code"])
}

func TestTimeSpentClampedToBudget(t *testing.T) {
	session := createSession(t, 3, 1, true, "MEDIUM") // 60 second budget
	questionID := currentQuestionID(t, session, "current_question")

	_, status := submitAnswer(t, session, questionID, 1, 99999)
	require.Equal(t, fiber.StatusOK, status)

	var stored models.AdaptiveSession
	require.NoError(t, db.First(&stored, uint(session["id"].(float64))).Error)
	answers := stored.AnswerList()
	require.Len(t, answers, 1)
	assert.LessOrEqual(t, answers[0].TimeSpentSeconds, 60)
}

func TestAbandonedSessionAutoSubmitsOnPoll(t *testing.T) {
	session := createSession(t, 10, 1, true, "MEDIUM")
	sessionID := uint(session["id"].(float64))

	// Push the start two minutes into the past, past the one minute budget
	require.NoError(t, db.Model(&models.AdaptiveSession{}).
		Where("id = ?", sessionID).
		Update("started_at", time.Now().Add(-2*time.Minute)).Error)

	resp := doRequest(t, "GET", sessionPath(session, ""), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	state := decodeBody(t, resp)
	assert.Equal(t, string(models.SessionCompleted), state["status"])
	assert.Equal(t, models.CompletionTimeExpired, state["completion_reason"])
	assert.NotNil(t, state["completed_at"])

	resp = doRequest(t, "GET", sessionPath(session, "/result"), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decodeBody(t, resp)["result"].(map[string]interface{})
	assert.Equal(t, float64(0), result["correct_answers"])
	assert.Equal(t, float64(10), result["total_questions"])
	assert.Equal(t, float64(0), result["score"])
}

func TestExpiredSubmitBecomesAutoSubmit(t *testing.T) {
	session := createSession(t, 3, 1, true, "MEDIUM")
	sessionID := uint(session["id"].(float64))
	questionID := currentQuestionID(t, session, "current_question")

	require.NoError(t, db.Model(&models.AdaptiveSession{}).
		Where("id = ?", sessionID).
		Update("started_at", time.Now().Add(-2*time.Minute)).Error)

	body, status := submitAnswer(t, session, questionID, 1, 30)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Time expired, test auto-submitted", body["message"])
	assert.Equal(t, string(models.SessionCompleted), body["status"])

	// The late answer was not recorded
	result := body["result"].(map[string]interface{})
	assert.Equal(t, float64(0), result["correct_answers"])
}

func TestResultIsIdempotent(t *testing.T) {
	session := createSession(t, 3, 30, true, "MEDIUM")
	questionID := currentQuestionID(t, session, "current_question")

	for i := 0; i < 3; i++ {
		body, status := submitAnswer(t, session, questionID, 1, 20)
		require.Equal(t, fiber.StatusOK, status)
		if i < 2 {
			questionID = currentQuestionID(t, body, "next_question")
		}
	}

	first := decodeBody(t, doRequest(t, "GET", sessionPath(session, "/result"), studentToken, nil))
	second := decodeBody(t, doRequest(t, "GET", sessionPath(session, "/result"), studentToken, nil))
	assert.Equal(t, first, second)

	// Only one result row exists for the session
	var count int64
	db.Model(&models.AssessmentResult{}).
		Where("session_id = ?", uint(session["id"].(float64))).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestResultUnavailableWhileActive(t *testing.T) {
	session := createSession(t, 3, 30, true, "MEDIUM")
	resp := doRequest(t, "GET", sessionPath(session, "/result"), studentToken, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "invalid_state", body["code"])
}

func TestGetUserSessionsListsOwnOnly(t *testing.T) {
	createSession(t, 3, 30, true, "MEDIUM")

	req := doRequest(t, "GET", "/api/adaptive/sessions", otherToken, nil)
	require.Equal(t, fiber.StatusOK, req.StatusCode)
	// The other user never created a session
	var sessions []interface{}
	decodeInto(t, req, &sessions)
	assert.Empty(t, sessions)
}
