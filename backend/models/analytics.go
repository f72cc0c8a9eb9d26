package models

import "time"

// MonthlyProgress is an aggregate view, not a table.
type MonthlyProgress struct {
	Month             time.Month `json:"month"`
	Year              int        `json:"year"`
	SessionsCompleted int64      `json:"sessions_completed"`
	AverageScore      float64    `json:"average_score"`
}

type ProgressOverview struct {
	StreakDays        int               `json:"streak_days"`
	SessionsCompleted int               `json:"sessions_completed"`
	QuestionsAnswered int               `json:"questions_answered"`
	AverageScore      float64           `json:"average_score"`
	MonthlyProgress   []MonthlyProgress `json:"monthly_progress"`
}

type PlatformStats struct {
	TotalUsers        int64   `json:"total_users"`
	SessionsCreated   int64   `json:"sessions_created"`
	SessionsCompleted int64   `json:"sessions_completed"`
	AverageScore      float64 `json:"average_score"`
}
