package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/billing"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/learning"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/user"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type CourseRepo = learning.CourseRepo
type LessonRepo = learning.LessonRepo
type QuizRepo = learning.QuizRepo
type EnrollmentRepo = learning.EnrollmentRepo
type EnrollmentQuizResultRepo = learning.EnrollmentQuizResultRepo
type CertificateRepo = learning.CertificateRepo

type TransactionRepo = billing.TransactionRepo
type TransactionFilter = billing.TransactionFilter
type StatusSum = billing.StatusSum
type AmountPoint = billing.AmountPoint

const (
	DefaultListLimit = billing.DefaultListLimit
	MaxListLimit     = billing.MaxListLimit
)

func ClampListLimit(limit int) int { return billing.ClampListLimit(limit) }

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewCourseRepo(db *gorm.DB, log *logger.Logger) CourseRepo { return learning.NewCourseRepo(db, log) }
func NewLessonRepo(db *gorm.DB, log *logger.Logger) LessonRepo { return learning.NewLessonRepo(db, log) }
func NewQuizRepo(db *gorm.DB, log *logger.Logger) QuizRepo     { return learning.NewQuizRepo(db, log) }
func NewEnrollmentRepo(db *gorm.DB, log *logger.Logger) EnrollmentRepo {
	return learning.NewEnrollmentRepo(db, log)
}
func NewEnrollmentQuizResultRepo(db *gorm.DB, log *logger.Logger) EnrollmentQuizResultRepo {
	return learning.NewEnrollmentQuizResultRepo(db, log)
}
func NewCertificateRepo(db *gorm.DB, log *logger.Logger) CertificateRepo {
	return learning.NewCertificateRepo(db, log)
}

func NewTransactionRepo(db *gorm.DB, log *logger.Logger) TransactionRepo {
	return billing.NewTransactionRepo(db, log)
}
