package services

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type EnrollmentService interface {
	// Join enrolls the learner in a free course. Paid courses return
	// ErrPaymentRequired; the caller should start a checkout instead.
	Join(ctx context.Context, learnerID, courseID uuid.UUID) (*types.Enrollment, error)
	CompleteLesson(ctx context.Context, learnerID, courseID, lessonID uuid.UUID) (domainagg.CompleteLessonResult, error)
	RecordQuizResult(ctx context.Context, in domainagg.RecordQuizResultInput) (domainagg.RecordQuizResultResult, error)

	Get(ctx context.Context, learnerID, courseID uuid.UUID) (*EnrollmentView, error)
	ListForLearner(ctx context.Context, learnerID uuid.UUID) ([]*types.Enrollment, error)
}

// EnrollmentView is one enrollment with its per-quiz results.
type EnrollmentView struct {
	Enrollment       *types.Enrollment             `json:"enrollment"`
	CompletedLessons []uuid.UUID                   `json:"completed_lessons"`
	QuizResults      []*types.EnrollmentQuizResult `json:"quiz_results"`
}

type enrollmentService struct {
	log         *logger.Logger
	agg         domainagg.EnrollmentAggregate
	enrollments repos.EnrollmentRepo
	quizResults repos.EnrollmentQuizResultRepo
	metrics     *observability.Metrics
}

func NewEnrollmentService(
	baseLog *logger.Logger,
	agg domainagg.EnrollmentAggregate,
	enrollments repos.EnrollmentRepo,
	quizResults repos.EnrollmentQuizResultRepo,
	metrics *observability.Metrics,
) EnrollmentService {
	return &enrollmentService{
		log:         baseLog.With("service", "EnrollmentService"),
		agg:         agg,
		enrollments: enrollments,
		quizResults: quizResults,
		metrics:     metrics,
	}
}

func (s *enrollmentService) Join(ctx context.Context, learnerID, courseID uuid.UUID) (*types.Enrollment, error) {
	ctx, span := observability.StartSpan(ctx, "EnrollmentService.Join", attribute.String("course_id", courseID.String()))
	defer span.End()

	res, err := s.agg.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: learnerID, CourseID: courseID})
	if err != nil {
		return nil, err
	}
	if res.PaymentRequired {
		return nil, domainagg.Reject(domainagg.CodePreconditionFailed, "EnrollmentService.Join", domainagg.ErrPaymentRequired)
	}
	s.metrics.IncEnrollmentGranted(res.Enrollment.Source)
	s.log.Info("learner enrolled", "learner_id", learnerID, "course_id", courseID, "source", res.Enrollment.Source)
	return res.Enrollment, nil
}

func (s *enrollmentService) CompleteLesson(ctx context.Context, learnerID, courseID, lessonID uuid.UUID) (domainagg.CompleteLessonResult, error) {
	ctx, span := observability.StartSpan(ctx, "EnrollmentService.CompleteLesson",
		attribute.String("course_id", courseID.String()),
		attribute.String("lesson_id", lessonID.String()),
	)
	defer span.End()

	res, err := s.agg.CompleteLesson(ctx, domainagg.CompleteLessonInput{
		LearnerID: learnerID,
		CourseID:  courseID,
		LessonID:  lessonID,
	})
	if err != nil {
		return res, err
	}
	switch {
	case res.JustCompleted:
		s.metrics.IncLessonCompletion("course_completed")
		s.log.Info("course completed", "learner_id", learnerID, "course_id", courseID)
	case res.Changed:
		s.metrics.IncLessonCompletion("progressed")
	default:
		s.metrics.IncLessonCompletion("noop")
	}
	return res, nil
}

func (s *enrollmentService) RecordQuizResult(ctx context.Context, in domainagg.RecordQuizResultInput) (domainagg.RecordQuizResultResult, error) {
	ctx, span := observability.StartSpan(ctx, "EnrollmentService.RecordQuizResult", attribute.String("quiz_id", in.QuizID.String()))
	defer span.End()
	return s.agg.RecordQuizResult(ctx, in)
}

func (s *enrollmentService) Get(ctx context.Context, learnerID, courseID uuid.UUID) (*EnrollmentView, error) {
	const op = "EnrollmentService.Get"
	dbc := dbctx.Context{Ctx: ctx}
	e, err := s.enrollments.GetByLearnerCourse(dbc, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domainagg.Reject(domainagg.CodeNotFound, op, domainagg.ErrNotFound)
	}
	results, err := s.quizResults.ListByEnrollmentIDs(dbc, []uuid.UUID{e.ID})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []*types.EnrollmentQuizResult{}
	}
	return &EnrollmentView{
		Enrollment:       e,
		CompletedLessons: e.CompletedLessons(),
		QuizResults:      results,
	}, nil
}

func (s *enrollmentService) ListForLearner(ctx context.Context, learnerID uuid.UUID) ([]*types.Enrollment, error) {
	return s.enrollments.ListByLearner(dbctx.Context{Ctx: ctx}, learnerID)
}
