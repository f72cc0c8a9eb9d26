package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"password_hash"`
	Role         string `gorm:"default:user" json:"role"` // user, admin
	TargetExam   string `json:"target_exam"`              // JEE, NEET, CLAT
	Grade        string `json:"grade"`
}

type UserProgress struct {
	gorm.Model
	UserID            uint
	LastActive        time.Time
	StreakDays        int `gorm:"default:0"`
	SessionsCompleted int `gorm:"default:0"`
	QuestionsAnswered int `gorm:"default:0"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
