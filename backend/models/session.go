package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// SessionStatus is the closed set of adaptive session states.
type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionPaused    SessionStatus = "PAUSED"
	SessionCompleted SessionStatus = "COMPLETED"
)

// Completion reasons, recorded when a session reaches COMPLETED.
const (
	CompletionFinished    = "finished"     // user answered every question
	CompletionTimeExpired = "time_expired" // auto-submit on an exhausted time budget
)

// SessionQuestion is a question frozen into a session at selection time.
type SessionQuestion struct {
	QuestionID       uint     `json:"question_id"`
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	CorrectAnswer    int      `json:"correct_answer"`
	Difficulty       string   `json:"difficulty"`
	TopicID          uint     `json:"topic_id"`
	TopicName        string   `json:"topic_name"`
	EstimatedSeconds int      `json:"estimated_seconds"`
}

// AnswerRecord is one entry in the session's answer log.
type AnswerRecord struct {
	QuestionID       uint      `json:"question_id"`
	Answer           int       `json:"answer"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	IsCorrect        bool      `json:"is_correct"`
	Difficulty       string    `json:"difficulty"` // tier active when answered
	AnsweredAt       time.Time `json:"answered_at"`
}

// DifficultyDecision records why a question index got its difficulty tier.
type DifficultyDecision struct {
	QuestionIndex int    `json:"question_index"`
	Difficulty    string `json:"difficulty"`
	Reason        string `json:"reason"`
}

type AdaptiveSession struct {
	gorm.Model
	Token              string `gorm:"uniqueIndex"`
	UserID             uint   `gorm:"index"`
	SubjectID          uint
	TopicID            *uint
	SubtopicID         *uint
	Status             SessionStatus `gorm:"default:ACTIVE"`
	QuestionCount      int
	TimeLimitSeconds   int
	StartingDifficulty string
	AdaptiveMode       bool
	CurrentIndex       int
	EstimatedScore     float64
	Questions          string // JSON array of SessionQuestion
	Answers            string // JSON array of AnswerRecord
	DifficultyLog      string // JSON array of DifficultyDecision
	StartedAt          time.Time
	PausedAt           *time.Time
	PausedSeconds      int // total seconds spent paused, frozen on pause
	CompletedAt        *time.Time
	CompletionReason   string
}

func (s *AdaptiveSession) QuestionList() []SessionQuestion {
	var questions []SessionQuestion
	json.Unmarshal([]byte(s.Questions), &questions)
	return questions
}

func (s *AdaptiveSession) SetQuestions(questions []SessionQuestion) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	s.Questions = string(data)
	return nil
}

func (s *AdaptiveSession) AnswerList() []AnswerRecord {
	var answers []AnswerRecord
	json.Unmarshal([]byte(s.Answers), &answers)
	return answers
}

func (s *AdaptiveSession) SetAnswers(answers []AnswerRecord) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	s.Answers = string(data)
	return nil
}

func (s *AdaptiveSession) DecisionList() []DifficultyDecision {
	var decisions []DifficultyDecision
	json.Unmarshal([]byte(s.DifficultyLog), &decisions)
	return decisions
}

func (s *AdaptiveSession) SetDecisions(decisions []DifficultyDecision) error {
	data, err := json.Marshal(decisions)
	if err != nil {
		return err
	}
	s.DifficultyLog = string(data)
	return nil
}
