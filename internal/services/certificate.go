package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/certimage"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/rediscache"
)

const certificateCacheKeyPrefix = "certificate:"

type CertificateService interface {
	// Claim issues the learner's certificate for a completed course, or
	// returns the one already issued.
	Claim(ctx context.Context, learnerID, courseID uuid.UUID) (*types.Certificate, bool, error)
	GetByCode(ctx context.Context, code string) (*PublicCertificate, error)
	ListForLearner(ctx context.Context, learnerID uuid.UUID) ([]*types.Certificate, error)
	RenderBadge(ctx context.Context, code string) ([]byte, error)
}

// PublicCertificate is what anyone holding the code may see.
type PublicCertificate struct {
	Code        string    `json:"code"`
	LearnerName string    `json:"learner_name"`
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	IssuedAt    time.Time `json:"issued_at"`
}

type CertificateServiceDeps struct {
	Log          *logger.Logger
	Aggregate    domainagg.CertificateAggregate
	Certificates repos.CertificateRepo
	Users        repos.UserRepo
	Courses      repos.CourseRepo
	Cache        rediscache.Cache
	CacheTTL     time.Duration
	Renderer     *certimage.Renderer
	Metrics      *observability.Metrics
}

type certificateService struct {
	deps  CertificateServiceDeps
	log   *logger.Logger
	group singleflight.Group
}

func NewCertificateService(deps CertificateServiceDeps) CertificateService {
	if deps.Cache == nil {
		deps.Cache = rediscache.Nop()
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = time.Hour
	}
	return &certificateService{
		deps: deps,
		log:  deps.Log.With("service", "CertificateService"),
	}
}

func (s *certificateService) Claim(ctx context.Context, learnerID, courseID uuid.UUID) (*types.Certificate, bool, error) {
	ctx, span := observability.StartSpan(ctx, "CertificateService.Claim", attribute.String("course_id", courseID.String()))
	defer span.End()

	res, err := s.deps.Aggregate.Claim(ctx, domainagg.ClaimCertificateInput{LearnerID: learnerID, CourseID: courseID})
	if err != nil {
		return nil, false, err
	}
	if res.Created {
		s.deps.Metrics.IncCertificateIssued()
		s.log.Info("certificate issued", "learner_id", learnerID, "course_id", courseID)
	}
	cert := res.Certificate
	return &cert, res.Created, nil
}

func (s *certificateService) GetByCode(ctx context.Context, code string) (*PublicCertificate, error) {
	const op = "CertificateService.GetByCode"
	code = types.NormalizeCertificateCode(code)
	if code == "" {
		return nil, domainagg.Reject(domainagg.CodeNotFound, op, domainagg.ErrNotFound)
	}

	var cached PublicCertificate
	if ok, err := s.deps.Cache.GetJSON(ctx, certificateCacheKeyPrefix+code, &cached); err != nil {
		s.log.Warn("certificate cache read failed", "error", err)
	} else if ok {
		s.deps.Metrics.IncCertificateLookup("hit")
		return &cached, nil
	}
	s.deps.Metrics.IncCertificateLookup("miss")

	// One caller's cancellation must not fail the others sharing the load.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(code, func() (any, error) {
		pc, err := s.load(loadCtx, op, code)
		if err != nil {
			return nil, err
		}
		if err := s.deps.Cache.SetJSON(loadCtx, certificateCacheKeyPrefix+code, pc, s.deps.CacheTTL); err != nil {
			s.log.Warn("certificate cache write failed", "error", err)
		}
		return pc, nil
	})
	if err != nil {
		return nil, err
	}
	pc := *v.(*PublicCertificate)
	return &pc, nil
}

func (s *certificateService) load(ctx context.Context, op, code string) (*PublicCertificate, error) {
	dbc := dbctx.Context{Ctx: ctx}
	cert, err := s.deps.Certificates.GetByCode(dbc, code)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, domainagg.Reject(domainagg.CodeNotFound, op, domainagg.ErrNotFound)
	}
	pc := &PublicCertificate{
		Code:     cert.Code,
		CourseID: cert.CourseID,
		IssuedAt: cert.IssuedAt.UTC(),
	}
	if u, err := s.deps.Users.GetByID(dbc, cert.LearnerID); err != nil {
		return nil, err
	} else if u != nil {
		pc.LearnerName = u.DisplayName()
	}
	if c, err := s.deps.Courses.GetByID(dbc, cert.CourseID); err != nil {
		return nil, err
	} else if c != nil {
		pc.CourseTitle = c.Title
	}
	return pc, nil
}

func (s *certificateService) ListForLearner(ctx context.Context, learnerID uuid.UUID) ([]*types.Certificate, error) {
	return s.deps.Certificates.ListByLearner(dbctx.Context{Ctx: ctx}, learnerID)
}

func (s *certificateService) RenderBadge(ctx context.Context, code string) ([]byte, error) {
	pc, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, "CertificateService.RenderBadge", "badge renderer not configured", nil)
	}
	return s.deps.Renderer.Render(certimage.Badge{
		LearnerName: pc.LearnerName,
		CourseTitle: pc.CourseTitle,
		Code:        pc.Code,
		IssuedAt:    pc.IssuedAt,
	})
}
