package aggregates_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	repotest "github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

func TestEnrollmentJoinFreeCourse(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, _ := repotest.SeedCourse(t, ctx, s.db, 0, 3)

	res, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if res.PaymentRequired || res.Enrollment == nil {
		t.Fatalf("expected enrollment, got %+v", res)
	}
	if res.Enrollment.Status != types.EnrollmentStatusInProgress || res.Enrollment.Progress != 0 {
		t.Fatalf("unexpected initial state: %+v", res.Enrollment)
	}

	_, err = s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID})
	if !errors.Is(err, domainagg.ErrAlreadyEnrolled) {
		t.Fatalf("second Join: want ErrAlreadyEnrolled, got %v", err)
	}
	if n, err := s.enrollments.CountByCourse(dbctx.Context{Ctx: ctx}, c.ID); err != nil || n != 1 {
		t.Fatalf("expected one enrollment, n=%d err=%v", n, err)
	}
}

func TestEnrollmentJoinPaidCourseSignalsPayment(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, _ := repotest.SeedCourse(t, ctx, s.db, 299000, 2)

	res, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !res.PaymentRequired || res.Price != 299000 || res.Enrollment != nil {
		t.Fatalf("expected payment signal, got %+v", res)
	}
	if e, _ := s.enrollments.GetByLearnerCourse(dbctx.Context{Ctx: ctx}, u.ID, c.ID); e != nil {
		t.Fatalf("paid join must not create an enrollment")
	}

	paid, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID, IsPaidGrant: true})
	if err != nil || paid.Enrollment == nil || paid.Enrollment.Source != types.EnrollmentSourcePayment {
		t.Fatalf("paid grant join: %+v err=%v", paid, err)
	}
}

func TestEnrollmentJoinUnknownCourse(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	_, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: uuid.New(), CourseID: uuid.New()})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}
}

func TestEnrollmentConcurrentJoinYieldsOne(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, _ := repotest.SeedCourse(t, ctx, s.db, 0, 2)

	const workers = 6
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		already  int
		otherErr []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domainagg.ErrAlreadyEnrolled):
				already++
			default:
				otherErr = append(otherErr, err)
			}
		}()
	}
	wg.Wait()
	if len(otherErr) > 0 {
		t.Fatalf("unexpected errors: %v", otherErr)
	}
	if ok != 1 || already != workers-1 {
		t.Fatalf("want 1 success and %d already-enrolled, got ok=%d already=%d", workers-1, ok, already)
	}
}

func TestEnrollmentGrantFromPaymentIsIdempotent(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, _ := repotest.SeedCourse(t, ctx, s.db, 500000, 2)

	first, err := s.enrollment.GrantFromPayment(ctx, domainagg.GrantFromPaymentInput{LearnerID: u.ID, CourseID: c.ID})
	if err != nil || !first.Created {
		t.Fatalf("first grant: %+v err=%v", first, err)
	}
	second, err := s.enrollment.GrantFromPayment(ctx, domainagg.GrantFromPaymentInput{LearnerID: u.ID, CourseID: c.ID})
	if err != nil || second.Created || second.Enrollment.ID != first.Enrollment.ID {
		t.Fatalf("second grant must be a no-op: %+v err=%v", second, err)
	}
}

func TestEnrollmentProgressScenario(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, lessons := repotest.SeedCourse(t, ctx, s.db, 0, 4)
	if _, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID}); err != nil {
		t.Fatalf("Join: %v", err)
	}

	complete := func(l *types.Lesson) domainagg.CompleteLessonResult {
		t.Helper()
		res, err := s.enrollment.CompleteLesson(ctx, domainagg.CompleteLessonInput{LearnerID: u.ID, CourseID: c.ID, LessonID: l.ID})
		if err != nil {
			t.Fatalf("CompleteLesson(%d): %v", l.Position, err)
		}
		return res
	}

	complete(lessons[0])
	res := complete(lessons[1])
	if res.Progress != 50 || res.Status != types.EnrollmentStatusInProgress {
		t.Fatalf("after 2/4: %+v", res)
	}

	// Re-completing is a no-op.
	for i := 0; i < 3; i++ {
		again := complete(lessons[1])
		if again.Changed || again.Progress != 50 {
			t.Fatalf("re-complete changed state: %+v", again)
		}
	}

	complete(lessons[2])
	res = complete(lessons[3])
	if res.Progress != 100 || res.Status != types.EnrollmentStatusCompleted || !res.JustCompleted {
		t.Fatalf("after 4/4: %+v", res)
	}
	again := complete(lessons[0])
	if again.JustCompleted || again.Progress != 100 || again.Status != types.EnrollmentStatusCompleted {
		t.Fatalf("completed is terminal: %+v", again)
	}

	e, err := s.enrollments.GetByLearnerCourse(dbctx.Context{Ctx: ctx}, u.ID, c.ID)
	if err != nil || e == nil {
		t.Fatalf("reload: %v", err)
	}
	if got := e.CompletedLessons(); len(got) != 4 || got[0] != lessons[0].ID || got[3] != lessons[3].ID {
		t.Fatalf("completed set order: %v", got)
	}
	if e.CompletedAt == nil {
		t.Fatalf("completed_at should be set")
	}
}

func TestEnrollmentCompletedIgnoresLessonsAddedLater(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, lessons := repotest.SeedCourse(t, ctx, s.db, 0, 2)
	if _, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID}); err != nil {
		t.Fatalf("Join: %v", err)
	}
	for _, l := range lessons {
		if _, err := s.enrollment.CompleteLesson(ctx, domainagg.CompleteLessonInput{LearnerID: u.ID, CourseID: c.ID, LessonID: l.ID}); err != nil {
			t.Fatalf("CompleteLesson: %v", err)
		}
	}
	before, err := s.enrollments.GetByLearnerCourse(dbctx.Context{Ctx: ctx}, u.ID, c.ID)
	if err != nil || before == nil || !before.IsCompleted() {
		t.Fatalf("expected completed enrollment, got %+v err=%v", before, err)
	}

	extra := repotest.SeedLesson(t, ctx, s.db, c.ID, 3)
	res, err := s.enrollment.CompleteLesson(ctx, domainagg.CompleteLessonInput{LearnerID: u.ID, CourseID: c.ID, LessonID: extra.ID})
	if err != nil {
		t.Fatalf("CompleteLesson on added lesson: %v", err)
	}
	if res.Changed || res.JustCompleted || res.Progress != 100 || res.Status != types.EnrollmentStatusCompleted {
		t.Fatalf("completed enrollment should be untouched: %+v", res)
	}

	after, err := s.enrollments.GetByLearnerCourse(dbctx.Context{Ctx: ctx}, u.ID, c.ID)
	if err != nil || after == nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Version != before.Version || len(after.CompletedLessons()) != 2 {
		t.Fatalf("completed set grew: version %d->%d set=%v", before.Version, after.Version, after.CompletedLessons())
	}
}

func TestEnrollmentCompleteLessonRejections(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, lessons := repotest.SeedCourse(t, ctx, s.db, 0, 2)
	other, otherLessons := repotest.SeedCourse(t, ctx, s.db, 0, 1)

	_, err := s.enrollment.CompleteLesson(ctx, domainagg.CompleteLessonInput{LearnerID: u.ID, CourseID: c.ID, LessonID: lessons[0].ID})
	if !errors.Is(err, domainagg.ErrNotEnrolled) {
		t.Fatalf("want ErrNotEnrolled, got %v", err)
	}

	if _, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID}); err != nil {
		t.Fatalf("Join: %v", err)
	}
	_, err = s.enrollment.CompleteLesson(ctx, domainagg.CompleteLessonInput{LearnerID: u.ID, CourseID: c.ID, LessonID: otherLessons[0].ID})
	if !errors.Is(err, domainagg.ErrLessonNotInCourse) {
		t.Fatalf("want ErrLessonNotInCourse, got %v (other course %s)", err, other.ID)
	}
}

func TestEnrollmentZeroLessonCourseStaysAtZero(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, _ := repotest.SeedCourse(t, ctx, s.db, 0, 0)
	res, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID})
	if err != nil || res.Enrollment.Progress != 0 {
		t.Fatalf("Join: %+v err=%v", res, err)
	}
}

func TestEnrollmentConcurrentCompletionsDoNotLoseUpdates(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, lessons := repotest.SeedCourse(t, ctx, s.db, 0, 4)
	if _, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID}); err != nil {
		t.Fatalf("Join: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(lessons)*2)
	for _, l := range lessons {
		for dup := 0; dup < 2; dup++ {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				_, err := s.enrollment.CompleteLesson(ctx, domainagg.CompleteLessonInput{LearnerID: u.ID, CourseID: c.ID, LessonID: id})
				errs <- err
			}(l.ID)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("CompleteLesson: %v", err)
		}
	}

	e, err := s.enrollments.GetByLearnerCourse(dbctx.Context{Ctx: ctx}, u.ID, c.ID)
	if err != nil || e == nil {
		t.Fatalf("reload: %v", err)
	}
	if e.Progress != 100 || e.Status != types.EnrollmentStatusCompleted || len(e.CompletedLessons()) != 4 {
		t.Fatalf("lost update: progress=%d status=%s set=%v", e.Progress, e.Status, e.CompletedLessons())
	}
}

func TestEnrollmentRecordQuizResultOverwrites(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, lessons := repotest.SeedCourse(t, ctx, s.db, 0, 1)
	q := repotest.SeedQuiz(t, ctx, s.db, c.ID, &lessons[0].ID)

	_, err := s.enrollment.RecordQuizResult(ctx, domainagg.RecordQuizResultInput{LearnerID: u.ID, QuizID: q.ID, Score: 1, Total: 5})
	if !errors.Is(err, domainagg.ErrNotEnrolled) {
		t.Fatalf("want ErrNotEnrolled, got %v", err)
	}
	if _, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID}); err != nil {
		t.Fatalf("Join: %v", err)
	}

	first, err := s.enrollment.RecordQuizResult(ctx, domainagg.RecordQuizResultInput{LearnerID: u.ID, CourseID: c.ID, QuizID: q.ID, Score: 2, Total: 5})
	if err != nil || first.Replaced {
		t.Fatalf("first result: %+v err=%v", first, err)
	}
	second, err := s.enrollment.RecordQuizResult(ctx, domainagg.RecordQuizResultInput{LearnerID: u.ID, QuizID: q.ID, Score: 5, Total: 5, Passed: true})
	if err != nil || !second.Replaced || second.Result.ID != first.Result.ID {
		t.Fatalf("second result should replace in place: %+v err=%v", second, err)
	}

	_, err = s.enrollment.RecordQuizResult(ctx, domainagg.RecordQuizResultInput{LearnerID: u.ID, QuizID: q.ID, Score: 6, Total: 5})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("score above total: want validation, got %v", err)
	}
	_, err = s.enrollment.RecordQuizResult(ctx, domainagg.RecordQuizResultInput{LearnerID: u.ID, CourseID: uuid.New(), QuizID: q.ID, Score: 1, Total: 5})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("course mismatch: want validation, got %v", err)
	}
}

func TestEnrollmentInvariantStatusIffFullProgress(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, lessons := repotest.SeedCourse(t, ctx, s.db, 0, 3)
	if _, err := s.enrollment.Join(ctx, domainagg.JoinEnrollmentInput{LearnerID: u.ID, CourseID: c.ID}); err != nil {
		t.Fatalf("Join: %v", err)
	}
	order := []int{2, 0, 2, 1, 0, 1}
	for _, idx := range order {
		res, err := s.enrollment.CompleteLesson(ctx, domainagg.CompleteLessonInput{LearnerID: u.ID, CourseID: c.ID, LessonID: lessons[idx].ID})
		if err != nil {
			t.Fatalf("CompleteLesson: %v", err)
		}
		if (res.Status == types.EnrollmentStatusCompleted) != (res.Progress == 100) {
			t.Fatalf("invariant broken: %+v", res)
		}
	}
}
