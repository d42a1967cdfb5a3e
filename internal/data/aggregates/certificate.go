package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

const maxCertificateCodeAttempts = 5

type CertificateAggregateDeps struct {
	Base BaseDeps

	Enrollments  repos.EnrollmentRepo
	Certificates repos.CertificateRepo

	// NewCode generates certificate codes; defaults to types.NewCertificateCode.
	NewCode func() string
}

type certificateAggregate struct {
	deps CertificateAggregateDeps
}

func NewCertificateAggregate(deps CertificateAggregateDeps) domainagg.CertificateAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.NewCode == nil {
		deps.NewCode = types.NewCertificateCode
	}
	return &certificateAggregate{deps: deps}
}

func (a *certificateAggregate) Contract() domainagg.Contract {
	return domainagg.CertificateAggregateContract
}

func (a *certificateAggregate) Claim(ctx context.Context, in domainagg.ClaimCertificateInput) (domainagg.ClaimCertificateResult, error) {
	const op = "Learning.Certificate.Claim"
	var out domainagg.ClaimCertificateResult

	if in.LearnerID == uuid.Nil || in.CourseID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing learner_id or course_id", nil)
	}
	if a.deps.Enrollments == nil || a.deps.Certificates == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "certificate aggregate repos not configured", nil)
	}
	issuedAt := a.deps.Base.at(in.ClaimedAt)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		e, err := a.deps.Enrollments.GetByLearnerCourse(dbc, in.LearnerID, in.CourseID)
		if err != nil {
			return err
		}
		if e == nil || !e.IsCompleted() {
			return domainagg.Reject(domainagg.CodePreconditionFailed, op, domainagg.ErrCourseNotCompleted)
		}

		existing, err := a.deps.Certificates.GetByLearnerCourse(dbc, in.LearnerID, in.CourseID)
		if err != nil {
			return err
		}
		if existing != nil {
			out = domainagg.ClaimCertificateResult{Certificate: *existing}
			return nil
		}

		for attempt := 0; attempt < maxCertificateCodeAttempts; attempt++ {
			row := &types.Certificate{
				ID:        uuid.New(),
				LearnerID: in.LearnerID,
				CourseID:  in.CourseID,
				Code:      a.deps.NewCode(),
				IssuedAt:  issuedAt,
			}
			created, err := a.deps.Certificates.InsertIfAbsent(dbc, row)
			if err != nil {
				return err
			}
			if created {
				out = domainagg.ClaimCertificateResult{Certificate: *row, Created: true}
				return nil
			}
			// Either a concurrent claim won the pair or the code collided.
			winner, err := a.deps.Certificates.GetByLearnerCourse(dbc, in.LearnerID, in.CourseID)
			if err != nil {
				return err
			}
			if winner != nil {
				out = domainagg.ClaimCertificateResult{Certificate: *winner}
				return nil
			}
		}
		return RetryableError("could not allocate a unique certificate code")
	})
	return out, err
}
