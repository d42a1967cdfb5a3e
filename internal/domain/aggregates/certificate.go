package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain"
)

var CertificateAggregateContract = Contract{
	Name:             "Learning.CertificateAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	JoinsAmbientTx:   true,
	Notes:            "Issues at most one certificate per (learner, course), gated on a completed enrollment.",
}

// CertificateAggregate owns certificate issuance.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodePreconditionFailed, CodeConflict, CodeRetryable, CodeInternal.
// A missing or unfinished enrollment carries ErrCourseNotCompleted as Cause.
type CertificateAggregate interface {
	Aggregate

	// Claim returns the existing certificate or issues a new one.
	Claim(ctx context.Context, in ClaimCertificateInput) (ClaimCertificateResult, error)
}

type ClaimCertificateInput struct {
	LearnerID uuid.UUID
	CourseID  uuid.UUID
	ClaimedAt time.Time
}

type ClaimCertificateResult struct {
	Certificate domain.Certificate
	Created     bool
}
