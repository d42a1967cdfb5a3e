package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

type EnrollmentAggregateDeps struct {
	Base BaseDeps

	Courses     repos.CourseRepo
	Lessons     repos.LessonRepo
	Quizzes     repos.QuizRepo
	Enrollments repos.EnrollmentRepo
	QuizResults repos.EnrollmentQuizResultRepo

	// CASAttempts bounds CompleteLesson retries on version conflicts.
	CASAttempts int
}

type enrollmentAggregate struct {
	deps EnrollmentAggregateDeps
}

func NewEnrollmentAggregate(deps EnrollmentAggregateDeps) domainagg.EnrollmentAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.CASAttempts <= 0 {
		deps.CASAttempts = defaultCASAttempts
	}
	return &enrollmentAggregate{deps: deps}
}

func (a *enrollmentAggregate) Contract() domainagg.Contract {
	return domainagg.EnrollmentAggregateContract
}

func (a *enrollmentAggregate) configured() bool {
	return a.deps.Courses != nil && a.deps.Lessons != nil && a.deps.Quizzes != nil &&
		a.deps.Enrollments != nil && a.deps.QuizResults != nil
}

func (a *enrollmentAggregate) Join(ctx context.Context, in domainagg.JoinEnrollmentInput) (domainagg.JoinEnrollmentResult, error) {
	const op = "Learning.Enrollment.Join"
	var out domainagg.JoinEnrollmentResult

	if in.LearnerID == uuid.Nil || in.CourseID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing learner_id or course_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "enrollment aggregate repos not configured", nil)
	}
	joinedAt := a.deps.Base.at(in.JoinedAt)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		course, err := a.deps.Courses.GetByID(dbc, in.CourseID)
		if err != nil {
			return err
		}
		if course == nil {
			return domainagg.Reject(domainagg.CodeNotFound, op, domainagg.ErrNotFound)
		}
		existing, err := a.deps.Enrollments.GetByLearnerCourse(dbc, in.LearnerID, in.CourseID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.Reject(domainagg.CodePreconditionFailed, op, domainagg.ErrAlreadyEnrolled)
		}
		if !course.IsFree() && !in.IsPaidGrant {
			out = domainagg.JoinEnrollmentResult{PaymentRequired: true, Price: course.Price}
			return nil
		}

		source := types.EnrollmentSourceFree
		if in.IsPaidGrant {
			source = types.EnrollmentSourcePayment
		}
		row := newEnrollment(in.LearnerID, in.CourseID, source, joinedAt)
		created, err := a.deps.Enrollments.InsertIfAbsent(dbc, row)
		if err != nil {
			return err
		}
		if !created {
			// Lost the race to a concurrent join or grant.
			return domainagg.Reject(domainagg.CodePreconditionFailed, op, domainagg.ErrAlreadyEnrolled)
		}
		out = domainagg.JoinEnrollmentResult{Enrollment: row, Price: course.Price}
		return nil
	})
	return out, err
}

func (a *enrollmentAggregate) GrantFromPayment(ctx context.Context, in domainagg.GrantFromPaymentInput) (domainagg.GrantFromPaymentResult, error) {
	const op = "Learning.Enrollment.GrantFromPayment"
	var out domainagg.GrantFromPaymentResult

	if in.LearnerID == uuid.Nil || in.CourseID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing learner_id or course_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "enrollment aggregate repos not configured", nil)
	}
	grantedAt := a.deps.Base.at(in.GrantedAt)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		course, err := a.deps.Courses.GetByID(dbc, in.CourseID)
		if err != nil {
			return err
		}
		if course == nil {
			return domainagg.Reject(domainagg.CodeNotFound, op, domainagg.ErrNotFound)
		}
		row := newEnrollment(in.LearnerID, in.CourseID, types.EnrollmentSourcePayment, grantedAt)
		created, err := a.deps.Enrollments.InsertIfAbsent(dbc, row)
		if err != nil {
			return err
		}
		if created {
			out = domainagg.GrantFromPaymentResult{Enrollment: row, Created: true}
			return nil
		}
		existing, err := a.deps.Enrollments.GetByLearnerCourse(dbc, in.LearnerID, in.CourseID)
		if err != nil {
			return err
		}
		if existing == nil {
			return InvariantError("enrollment insert skipped but no row exists for learner/course")
		}
		out = domainagg.GrantFromPaymentResult{Enrollment: existing, Created: false}
		return nil
	})
	return out, err
}

func (a *enrollmentAggregate) CompleteLesson(ctx context.Context, in domainagg.CompleteLessonInput) (domainagg.CompleteLessonResult, error) {
	const op = "Learning.Enrollment.CompleteLesson"
	var out domainagg.CompleteLessonResult

	if in.LearnerID == uuid.Nil || in.CourseID == uuid.Nil || in.LessonID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing learner_id, course_id or lesson_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "enrollment aggregate repos not configured", nil)
	}
	completedAt := a.deps.Base.at(in.CompletedAt)

	err := executeWriteWithRetry(ctx, a.deps.Base, op, a.deps.CASAttempts, func(dbc dbctx.Context) error {
		e, err := a.deps.Enrollments.LockByLearnerCourse(dbc, in.LearnerID, in.CourseID)
		if err != nil {
			return err
		}
		if e == nil {
			return domainagg.Reject(domainagg.CodePreconditionFailed, op, domainagg.ErrNotEnrolled)
		}

		lessons, err := a.deps.Lessons.ListByCourseID(dbc, in.CourseID)
		if err != nil {
			return err
		}
		inCourse := make(map[uuid.UUID]struct{}, len(lessons))
		for _, l := range lessons {
			inCourse[l.ID] = struct{}{}
		}
		if _, ok := inCourse[in.LessonID]; !ok {
			return domainagg.Reject(domainagg.CodeValidation, op, domainagg.ErrLessonNotInCourse)
		}

		// Completed is terminal.
		if e.IsCompleted() {
			out = domainagg.CompleteLessonResult{EnrollmentID: e.ID, Progress: e.Progress, Status: e.Status}
			return nil
		}

		set := e.CompletedLessons()
		for _, id := range set {
			if id == in.LessonID {
				out = domainagg.CompleteLessonResult{EnrollmentID: e.ID, Progress: e.Progress, Status: e.Status}
				return nil
			}
		}
		set = append(set, in.LessonID)

		// Only lessons still in the course count towards progress.
		done := 0
		for _, id := range set {
			if _, ok := inCourse[id]; ok {
				done++
			}
		}

		status := e.Status
		progress := types.ComputeProgress(done, len(lessons))
		justCompleted := false
		updates := map[string]any{
			"completed_lesson_ids": types.EncodeLessonSet(set),
			"version":              e.Version + 1,
			"updated_at":           completedAt,
		}
		if progress >= 100 {
			progress = 100
			status = types.EnrollmentStatusCompleted
			justCompleted = true
			updates["status"] = status
			updates["completed_at"] = completedAt
		}
		updates["progress"] = progress

		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, types.Enrollment{}.TableName(), e.ID, e.Version, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "enrollment changed concurrently"); err != nil {
			return err
		}
		out = domainagg.CompleteLessonResult{
			EnrollmentID:  e.ID,
			Progress:      progress,
			Status:        status,
			Changed:       true,
			JustCompleted: justCompleted,
		}
		return nil
	})
	return out, err
}

func (a *enrollmentAggregate) RecordQuizResult(ctx context.Context, in domainagg.RecordQuizResultInput) (domainagg.RecordQuizResultResult, error) {
	const op = "Learning.Enrollment.RecordQuizResult"
	var out domainagg.RecordQuizResultResult

	switch {
	case in.LearnerID == uuid.Nil || in.QuizID == uuid.Nil:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing learner_id or quiz_id", nil)
	case in.Score < 0 || in.Total < 0:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "score and total must be >= 0", nil)
	case in.Total > 0 && in.Score > in.Total:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "score cannot exceed total", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "enrollment aggregate repos not configured", nil)
	}
	submittedAt := a.deps.Base.at(in.SubmittedAt)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		quiz, err := a.deps.Quizzes.GetByID(dbc, in.QuizID)
		if err != nil {
			return err
		}
		if quiz == nil {
			return domainagg.Reject(domainagg.CodeNotFound, op, domainagg.ErrNotFound)
		}
		if in.CourseID != uuid.Nil && in.CourseID != quiz.CourseID {
			return domainagg.NewError(domainagg.CodeValidation, op,
				fmt.Sprintf("quiz %s does not belong to course %s", quiz.ID, in.CourseID), nil)
		}
		e, err := a.deps.Enrollments.GetByLearnerCourse(dbc, in.LearnerID, quiz.CourseID)
		if err != nil {
			return err
		}
		if e == nil {
			return domainagg.Reject(domainagg.CodePreconditionFailed, op, domainagg.ErrNotEnrolled)
		}

		prev, err := a.deps.QuizResults.GetByEnrollmentQuiz(dbc, e.ID, quiz.ID)
		if err != nil {
			return err
		}
		row := &types.EnrollmentQuizResult{
			ID:           uuid.New(),
			EnrollmentID: e.ID,
			QuizID:       quiz.ID,
			Score:        in.Score,
			Total:        in.Total,
			Passed:       in.Passed,
			SubmittedAt:  submittedAt,
		}
		if prev != nil {
			row.ID = prev.ID
		}
		if err := a.deps.QuizResults.Upsert(dbc, row); err != nil {
			return err
		}
		out = domainagg.RecordQuizResultResult{Result: *row, Replaced: prev != nil}
		return nil
	})
	return out, err
}

func newEnrollment(learnerID, courseID uuid.UUID, source string, at time.Time) *types.Enrollment {
	return &types.Enrollment{
		ID:                 uuid.New(),
		LearnerID:          learnerID,
		CourseID:           courseID,
		Status:             types.EnrollmentStatusInProgress,
		Progress:           0,
		CompletedLessonIDs: types.EncodeLessonSet(nil),
		Source:             source,
		Version:            1,
		CreatedAt:          at,
		UpdatedAt:          at,
	}
}
