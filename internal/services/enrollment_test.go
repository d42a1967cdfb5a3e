package services

import (
	"context"
	"errors"
	"testing"

	repotest "github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

func TestEnrollmentServiceJoin(t *testing.T) {
	s := newSvcStack(t)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	free, _ := repotest.SeedCourse(t, ctx, s.db, 0, 2)
	paid, _ := repotest.SeedCourse(t, ctx, s.db, 99000, 2)

	e, err := s.enrollment.Join(ctx, u.ID, free.ID)
	if err != nil || e.Source != types.EnrollmentSourceFree {
		t.Fatalf("free join: %+v err=%v", e, err)
	}
	if _, err := s.enrollment.Join(ctx, u.ID, free.ID); !errors.Is(err, domainagg.ErrAlreadyEnrolled) {
		t.Fatalf("second join: want ErrAlreadyEnrolled, got %v", err)
	}
	if _, err := s.enrollment.Join(ctx, u.ID, paid.ID); !errors.Is(err, domainagg.ErrPaymentRequired) {
		t.Fatalf("paid join: want ErrPaymentRequired, got %v", err)
	}
}

func TestEnrollmentServiceGetAndList(t *testing.T) {
	s := newSvcStack(t)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, lessons := repotest.SeedCourse(t, ctx, s.db, 0, 2)
	q := repotest.SeedQuiz(t, ctx, s.db, c.ID, nil)

	if _, err := s.enrollment.Get(ctx, u.ID, c.ID); !errors.Is(err, domainagg.ErrNotFound) {
		t.Fatalf("want ErrNotFound before joining, got %v", err)
	}
	if _, err := s.enrollment.Join(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	res, err := s.enrollment.CompleteLesson(ctx, u.ID, c.ID, lessons[0].ID)
	if err != nil || res.Progress != 50 {
		t.Fatalf("CompleteLesson: %+v err=%v", res, err)
	}
	if _, err := s.enrollment.RecordQuizResult(ctx, domainagg.RecordQuizResultInput{LearnerID: u.ID, QuizID: q.ID, Score: 3, Total: 4, Passed: true}); err != nil {
		t.Fatalf("RecordQuizResult: %v", err)
	}

	view, err := s.enrollment.Get(ctx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(view.CompletedLessons) != 1 || view.CompletedLessons[0] != lessons[0].ID {
		t.Fatalf("completed lessons: %v", view.CompletedLessons)
	}
	if len(view.QuizResults) != 1 || view.QuizResults[0].Score != 3 {
		t.Fatalf("quiz results: %+v", view.QuizResults)
	}

	list, err := s.enrollment.ListForLearner(ctx, u.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListForLearner: %d err=%v", len(list), err)
	}
}
