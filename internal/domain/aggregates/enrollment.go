package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain"
)

var EnrollmentAggregateContract = Contract{
	Name:             "Learning.EnrollmentAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	JoinsAmbientTx:   true,
	Notes:            "Owns enrollment creation, the completed-lesson set, derived progress/status and live quiz results.",
}

// EnrollmentAggregate owns the absent -> in_progress -> completed state machine.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodePreconditionFailed, CodeConflict, CodeRetryable, CodeInternal.
// Domain rejections carry ErrAlreadyEnrolled, ErrNotEnrolled or ErrLessonNotInCourse as Cause.
type EnrollmentAggregate interface {
	Aggregate

	// Join enrolls a learner directly. Paid courses are not enrolled unless
	// IsPaidGrant is set; the result reports PaymentRequired instead.
	Join(ctx context.Context, in JoinEnrollmentInput) (JoinEnrollmentResult, error)

	// GrantFromPayment idempotently creates the enrollment after a successful
	// ledger record. An existing enrollment is left untouched.
	GrantFromPayment(ctx context.Context, in GrantFromPaymentInput) (GrantFromPaymentResult, error)

	// CompleteLesson adds the lesson to the completed set and recomputes progress.
	CompleteLesson(ctx context.Context, in CompleteLessonInput) (CompleteLessonResult, error)

	// RecordQuizResult replaces the live result for the quiz.
	RecordQuizResult(ctx context.Context, in RecordQuizResultInput) (RecordQuizResultResult, error)
}

type JoinEnrollmentInput struct {
	LearnerID   uuid.UUID
	CourseID    uuid.UUID
	IsPaidGrant bool
	JoinedAt    time.Time
}

type JoinEnrollmentResult struct {
	Enrollment      *domain.Enrollment
	PaymentRequired bool
	Price           int64
}

type GrantFromPaymentInput struct {
	LearnerID uuid.UUID
	CourseID  uuid.UUID
	GrantedAt time.Time
}

type GrantFromPaymentResult struct {
	Enrollment *domain.Enrollment
	Created    bool
}

type CompleteLessonInput struct {
	LearnerID   uuid.UUID
	CourseID    uuid.UUID
	LessonID    uuid.UUID
	CompletedAt time.Time
}

type CompleteLessonResult struct {
	EnrollmentID uuid.UUID
	Progress     int
	Status       string
	// Changed is false when the lesson was already in the set.
	Changed bool
	// JustCompleted is true only on the call that reached 100.
	JustCompleted bool
}

type RecordQuizResultInput struct {
	LearnerID uuid.UUID
	// CourseID may be zero; it is then taken from the quiz.
	CourseID    uuid.UUID
	QuizID      uuid.UUID
	Score       int
	Total       int
	Passed      bool
	SubmittedAt time.Time
}

type RecordQuizResultResult struct {
	Result   domain.EnrollmentQuizResult
	Replaced bool
}
