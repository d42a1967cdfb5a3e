package aggregates_test

import (
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/coursemarket-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	repotest "github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

type stack struct {
	db    *gorm.DB
	hooks *aggtest.HooksRecorder

	enrollments  repos.EnrollmentRepo
	transactions repos.TransactionRepo
	certificates repos.CertificateRepo

	ledger     domainagg.LedgerAggregate
	enrollment domainagg.EnrollmentAggregate
	cert       domainagg.CertificateAggregate
}

// newStack wires the aggregates against a committed (not rolled back)
// database so concurrent writers see each other.
func newStack(t *testing.T, newCode func() string) *stack {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	hooks := &aggtest.HooksRecorder{}
	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks}

	s := &stack{
		db:           db,
		hooks:        hooks,
		enrollments:  repos.NewEnrollmentRepo(db, log),
		transactions: repos.NewTransactionRepo(db, log),
		certificates: repos.NewCertificateRepo(db, log),
	}
	s.ledger = aggregates.NewLedgerAggregate(aggregates.LedgerAggregateDeps{
		Base:         base,
		Transactions: s.transactions,
	})
	s.enrollment = aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
		Base:        base,
		Courses:     repos.NewCourseRepo(db, log),
		Lessons:     repos.NewLessonRepo(db, log),
		Quizzes:     repos.NewQuizRepo(db, log),
		Enrollments: s.enrollments,
		QuizResults: repos.NewEnrollmentQuizResultRepo(db, log),
	})
	s.cert = aggregates.NewCertificateAggregate(aggregates.CertificateAggregateDeps{
		Base:         base,
		Enrollments:  s.enrollments,
		Certificates: s.certificates,
		NewCode:      newCode,
	})
	return s
}
