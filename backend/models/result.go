package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// TierStats is a correct/total pair for one difficulty tier or topic.
type TierStats struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// AssessmentResult is the read-only view computed once a session completes.
// It is never mutated afterwards; a second completion call returns this row.
type AssessmentResult struct {
	gorm.Model
	SessionID          uint `gorm:"uniqueIndex"`
	UserID             uint `gorm:"index"`
	TotalQuestions     int
	CorrectAnswers     int
	Score              float64 // rounded percentage
	TimeSpentSeconds   int
	AverageTimeSeconds float64
	DifficultyStats    string // JSON map tier -> TierStats
	TopicStats         string // JSON map topic -> TierStats
	Strengths          string // JSON array of strings
	Weaknesses         string // JSON array of strings
	Recommendations    string // JSON array of strings
	Confidence         float64
	CompletionReason   string
}

func (r *AssessmentResult) DifficultyBreakdown() map[string]TierStats {
	stats := make(map[string]TierStats)
	json.Unmarshal([]byte(r.DifficultyStats), &stats)
	return stats
}

func (r *AssessmentResult) TopicBreakdown() map[string]TierStats {
	stats := make(map[string]TierStats)
	json.Unmarshal([]byte(r.TopicStats), &stats)
	return stats
}

func (r *AssessmentResult) StrengthList() []string {
	var out []string
	json.Unmarshal([]byte(r.Strengths), &out)
	return out
}

func (r *AssessmentResult) WeaknessList() []string {
	var out []string
	json.Unmarshal([]byte(r.Weaknesses), &out)
	return out
}

func (r *AssessmentResult) RecommendationList() []string {
	var out []string
	json.Unmarshal([]byte(r.Recommendations), &out)
	return out
}
