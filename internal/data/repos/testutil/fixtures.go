package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	if email == "" {
		email = fmt.Sprintf("learner-%s@example.com", uuid.NewString())
	}
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      types.RoleLearner,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedCourse creates a course with n lessons at positions 1..n.
func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, price int64, lessons int) (*types.Course, []*types.Lesson) {
	tb.Helper()
	c := &types.Course{
		ID:    uuid.New(),
		Title: "Distributed Systems 101",
		Price: price,
	}
	if err := tx.WithContext(ctx).Omit("Lessons").Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	out := make([]*types.Lesson, 0, lessons)
	for i := 1; i <= lessons; i++ {
		out = append(out, SeedLesson(tb, ctx, tx, c.ID, i))
	}
	return c, out
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, position int) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    fmt.Sprintf("Lesson %d", position),
		Position: position,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, lessonID *uuid.UUID) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{
		ID:       uuid.New(),
		CourseID: courseID,
		LessonID: lessonID,
		Title:    "Checkpoint",
	}
	if err := tx.WithContext(ctx).Omit("Course").Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, learnerID, courseID uuid.UUID) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		ID:                 uuid.New(),
		LearnerID:          learnerID,
		CourseID:           courseID,
		Status:             types.EnrollmentStatusInProgress,
		CompletedLessonIDs: types.EncodeLessonSet(nil),
		Source:             types.EnrollmentSourceFree,
		Version:            1,
	}
	if err := tx.WithContext(ctx).Omit("Course", "QuizResults").Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedTransaction(tb testing.TB, ctx context.Context, tx *gorm.DB, learnerID, courseID uuid.UUID, status string, amount int64, at time.Time) *types.Transaction {
	tb.Helper()
	row := &types.Transaction{
		ID:              uuid.New(),
		LearnerID:       learnerID,
		CourseID:        courseID,
		Amount:          amount,
		PaymentMethod:   types.PaymentMethodVNPay,
		TransactionCode: uuid.NewString(),
		Status:          status,
		CreatedAt:       at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed transaction: %v", err)
	}
	return row
}
