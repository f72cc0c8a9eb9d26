package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type Subject struct {
	gorm.Model
	Name   string `gorm:"unique;not null"`
	Exam   string // JEE, NEET, CLAT
	Topics []Topic
}

type Topic struct {
	gorm.Model
	SubjectID uint
	Name      string
	Subtopics []Subtopic
}

type Subtopic struct {
	gorm.Model
	TopicID uint
	Name    string
}

// Question is a bank question. Once a question is snapshotted into a
// session it is never read again for that session, so later edits to the
// bank cannot change a running test.
type Question struct {
	gorm.Model
	SubjectID        uint
	TopicID          uint
	SubtopicID       *uint
	Text             string
	Options          string // JSON array of options
	CorrectAnswer    int
	Difficulty       string // EASY, MEDIUM, HARD
	EstimatedSeconds int
	Explanation      string
	Source           string `gorm:"default:bank"` // bank, ai
}

func (q *Question) OptionList() []string {
	var options []string
	json.Unmarshal([]byte(q.Options), &options)
	return options
}

func (q *Question) SetOptions(options []string) error {
	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = string(data)
	return nil
}
