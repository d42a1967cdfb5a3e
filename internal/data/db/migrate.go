package db

import (
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity (read-only here)
		&types.User{},

		// Catalogue (read-only here)
		&types.Course{},
		&types.Lesson{},
		&types.Quiz{},

		// Enrollment state machine
		&types.Enrollment{},
		&types.EnrollmentQuizResult{},
		&types.Certificate{},

		// Payment ledger
		&types.Transaction{},
	)
}
