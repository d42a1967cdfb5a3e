package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type Repos struct {
	User        repos.UserRepo
	Course      repos.CourseRepo
	Lesson      repos.LessonRepo
	Quiz        repos.QuizRepo
	Enrollment  repos.EnrollmentRepo
	QuizResult  repos.EnrollmentQuizResultRepo
	Certificate repos.CertificateRepo
	Transaction repos.TransactionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		Course:      repos.NewCourseRepo(db, log),
		Lesson:      repos.NewLessonRepo(db, log),
		Quiz:        repos.NewQuizRepo(db, log),
		Enrollment:  repos.NewEnrollmentRepo(db, log),
		QuizResult:  repos.NewEnrollmentQuizResultRepo(db, log),
		Certificate: repos.NewCertificateRepo(db, log),
		Transaction: repos.NewTransactionRepo(db, log),
	}
}
