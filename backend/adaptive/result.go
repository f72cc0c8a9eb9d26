package adaptive

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"examprep/backend/models"
)

// Thresholds configure when a topic or tier counts as a strength or a
// weakness.
type Thresholds struct {
	Strength float64
	Weakness float64
}

var tierOrder = []Difficulty{Easy, Medium, Hard}

// Aggregate replays a completed session's answer log into an
// AssessmentResult. It is deterministic: the same session always produces
// the same result, so completing twice cannot disagree with the cached row.
func Aggregate(s *models.AdaptiveSession, th Thresholds) (*models.AssessmentResult, error) {
	if s.Status != models.SessionCompleted {
		return nil, Errorf(ErrInvalidState, "cannot aggregate a %s session", s.Status)
	}

	questions := s.QuestionList()
	answers := s.AnswerList()
	total := len(questions)
	if total == 0 {
		return nil, Errorf(ErrInvalidState, "session has no questions")
	}

	correct := 0
	timeSpent := 0
	difficultyStats := make(map[string]models.TierStats)
	topicStats := make(map[string]models.TierStats)

	topicByQuestion := make(map[uint]string, len(questions))
	for _, q := range questions {
		topicByQuestion[q.QuestionID] = q.TopicName
	}

	for _, a := range answers {
		timeSpent += a.TimeSpentSeconds

		ds := difficultyStats[a.Difficulty]
		ds.Total++
		topic := topicByQuestion[a.QuestionID]
		ts := topicStats[topic]
		ts.Total++

		if a.IsCorrect {
			correct++
			ds.Correct++
			ts.Correct++
		}
		difficultyStats[a.Difficulty] = ds
		topicStats[topic] = ts
	}

	score := math.Round(100 * float64(correct) / float64(total))

	strengths, weaknesses := classify(difficultyStats, topicStats, th)
	recommendations := recommend(difficultyStats, topicStats, th)

	result := &models.AssessmentResult{
		SessionID:          s.ID,
		UserID:             s.UserID,
		TotalQuestions:     total,
		CorrectAnswers:     correct,
		Score:              score,
		TimeSpentSeconds:   timeSpent,
		AverageTimeSeconds: round2(float64(timeSpent) / float64(total)),
		Confidence:         confidence(len(answers), difficultyStats),
		CompletionReason:   s.CompletionReason,
	}

	var err error
	if result.DifficultyStats, err = marshalStats(difficultyStats); err != nil {
		return nil, err
	}
	if result.TopicStats, err = marshalStats(topicStats); err != nil {
		return nil, err
	}
	if result.Strengths, err = marshalStrings(strengths); err != nil {
		return nil, err
	}
	if result.Weaknesses, err = marshalStrings(weaknesses); err != nil {
		return nil, err
	}
	if result.Recommendations, err = marshalStrings(recommendations); err != nil {
		return nil, err
	}

	return result, nil
}

// classify walks tiers in their natural order and topics alphabetically so
// the output is stable across replays.
func classify(difficultyStats, topicStats map[string]models.TierStats, th Thresholds) (strengths, weaknesses []string) {
	for _, tier := range tierOrder {
		stats, ok := difficultyStats[string(tier)]
		if !ok || stats.Total == 0 {
			continue
		}
		accuracy := float64(stats.Correct) / float64(stats.Total)
		if accuracy >= th.Strength {
			strengths = append(strengths, fmt.Sprintf("Strong performance on %s questions (%d%%)", tier, percent(accuracy)))
		} else if accuracy < th.Weakness {
			weaknesses = append(weaknesses, fmt.Sprintf("Struggled with %s questions (%d%%)", tier, percent(accuracy)))
		}
	}

	for _, topic := range sortedKeys(topicStats) {
		stats := topicStats[topic]
		if stats.Total == 0 || topic == "" {
			continue
		}
		accuracy := float64(stats.Correct) / float64(stats.Total)
		if accuracy >= th.Strength {
			strengths = append(strengths, fmt.Sprintf("Strong grasp of %s (%d%%)", topic, percent(accuracy)))
		} else if accuracy < th.Weakness {
			weaknesses = append(weaknesses, fmt.Sprintf("Needs work on %s (%d%%)", topic, percent(accuracy)))
		}
	}

	return strengths, weaknesses
}

// recommend turns weak areas into templated next steps. No external AI call
// is involved; an enrichment service may append to these later.
func recommend(difficultyStats, topicStats map[string]models.TierStats, th Thresholds) []string {
	var out []string

	for _, tier := range tierOrder {
		stats, ok := difficultyStats[string(tier)]
		if !ok || stats.Total == 0 {
			continue
		}
		if float64(stats.Correct)/float64(stats.Total) < th.Weakness {
			out = append(out, fmt.Sprintf("Practice more %s questions before moving to a higher difficulty", tier))
		}
	}

	for _, topic := range sortedKeys(topicStats) {
		stats := topicStats[topic]
		if stats.Total == 0 || topic == "" {
			continue
		}
		if float64(stats.Correct)/float64(stats.Total) < th.Weakness {
			out = append(out, fmt.Sprintf("Revise %s and retry a focused practice set", topic))
		}
	}

	if len(out) == 0 {
		out = append(out, "Keep practicing at higher difficulty levels to maintain momentum")
	}

	return out
}

// confidence combines sample size with consistency of accuracy across the
// tiers that were actually exercised. Few answers or a wide spread between
// tiers both pull it down. Range [0, 1].
func confidence(answered int, difficultyStats map[string]models.TierStats) float64 {
	sample := float64(answered) / 10.0
	if sample > 1 {
		sample = 1
	}

	minAcc, maxAcc := 1.0, 0.0
	tiers := 0
	for _, tier := range tierOrder {
		stats, ok := difficultyStats[string(tier)]
		if !ok || stats.Total == 0 {
			continue
		}
		accuracy := float64(stats.Correct) / float64(stats.Total)
		if accuracy < minAcc {
			minAcc = accuracy
		}
		if accuracy > maxAcc {
			maxAcc = accuracy
		}
		tiers++
	}

	consistency := 1.0
	if tiers > 1 {
		consistency = 1 - (maxAcc - minAcc)
	}
	if answered == 0 {
		consistency = 0
	}

	return round2(0.6*sample + 0.4*consistency)
}

func marshalStats(stats map[string]models.TierStats) (string, error) {
	data, err := json.Marshal(stats)
	return string(data), err
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	return string(data), err
}

func sortedKeys(stats map[string]models.TierStats) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func percent(accuracy float64) int {
	return int(math.Round(accuracy * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
