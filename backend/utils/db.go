package utils

import (
	"fmt"

	"examprep/backend/config"
	"examprep/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the Postgres connection and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := MigrateModels(db); err != nil {
		return nil, err
	}

	return db, nil
}

// MigrateModels runs AutoMigrate for every model. Shared with the test
// setup, which runs against SQLite.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProgress{},
		&models.LoginHistory{},
		&models.Subject{},
		&models.Topic{},
		&models.Subtopic{},
		&models.Question{},
		&models.AdaptiveSession{},
		&models.AssessmentResult{},
	)
}
