package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Catalog     services.CatalogService
	Enrollment  services.EnrollmentService
	Payment     services.PaymentService
	Certificate services.CertificateService
	Ledger      services.LedgerQueryService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewMetricsHooks(metrics)}
	enrollmentAgg := aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
		Base:        base,
		Courses:     r.Course,
		Lessons:     r.Lesson,
		Quizzes:     r.Quiz,
		Enrollments: r.Enrollment,
		QuizResults: r.QuizResult,
	})
	ledgerAgg := aggregates.NewLedgerAggregate(aggregates.LedgerAggregateDeps{
		Base:         base,
		Transactions: r.Transaction,
	})
	certificateAgg := aggregates.NewCertificateAggregate(aggregates.CertificateAggregateDeps{
		Base:         base,
		Enrollments:  r.Enrollment,
		Certificates: r.Certificate,
	})

	catalog := services.NewCatalogService(log, r.Course, r.Lesson)
	certificates := services.NewCertificateService(services.CertificateServiceDeps{
		Log:          log,
		Aggregate:    certificateAgg,
		Certificates: r.Certificate,
		Users:        r.User,
		Courses:      r.Course,
		Cache:        c.Cache,
		CacheTTL:     cfg.CertCacheTTL,
		Renderer:     c.Renderer,
		Metrics:      metrics,
	})
	out := Services{
		Auth:        services.NewAuthService(log, cfg.JWTSecretKey),
		Catalog:     catalog,
		Enrollment:  services.NewEnrollmentService(log, enrollmentAgg, r.Enrollment, r.QuizResult, metrics),
		Certificate: certificates,
		Ledger:      services.NewLedgerQueryService(log, r.Transaction, cfg.VNPay.Location),
	}
	if c.Gateway != nil {
		out.Payment = services.NewPaymentService(services.PaymentServiceDeps{
			Log:         log,
			Gateway:     c.Gateway,
			Runner:      aggregates.NewGormTxRunner(db),
			Catalog:     catalog,
			Enrollments: r.Enrollment,
			Ledger:      ledgerAgg,
			Enrollment:  enrollmentAgg,
			Metrics:     metrics,
		})
	}
	return out
}
