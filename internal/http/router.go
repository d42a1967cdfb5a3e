package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/coursemarket-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursemarket-backend/internal/http/middleware"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	EnrollmentHandler  *httpH.EnrollmentHandler
	PaymentHandler     *httpH.PaymentHandler
	CertificateHandler *httpH.CertificateHandler
	LedgerHandler      *httpH.LedgerHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Public
	if cfg.PaymentHandler != nil {
		api.GET("/payments/vnpay/return", cfg.PaymentHandler.VNPayReturn)
	}
	if cfg.CertificateHandler != nil {
		api.GET("/public/certificates/:code", cfg.CertificateHandler.GetPublic)
		api.GET("/public/certificates/:code/badge.png", cfg.CertificateHandler.Badge)
	}

	// Learner and admin routes are only mounted behind auth.
	if cfg.AuthMiddleware == nil {
		if cfg.Log != nil {
			cfg.Log.Warn("auth middleware missing; learner and admin routes not registered")
		}
		return r
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		// Enrollment
		if cfg.EnrollmentHandler != nil {
			protected.POST("/courses/:id/enroll", cfg.EnrollmentHandler.Join)
			protected.GET("/courses/:id/enrollment", cfg.EnrollmentHandler.Get)
			protected.POST("/courses/:id/lessons/:lessonId/complete", cfg.EnrollmentHandler.CompleteLesson)
			protected.GET("/enrollments", cfg.EnrollmentHandler.ListMine)
			protected.POST("/quizzes/:id/result", cfg.EnrollmentHandler.RecordQuizResult)
		}

		// Payments
		if cfg.PaymentHandler != nil {
			protected.POST("/courses/:id/checkout", cfg.PaymentHandler.Checkout)
		}

		// Certificates
		if cfg.CertificateHandler != nil {
			protected.POST("/courses/:id/certificate", cfg.CertificateHandler.Claim)
			protected.GET("/certificates", cfg.CertificateHandler.ListMine)
		}
	}

	admin := protected.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	{
		if cfg.LedgerHandler != nil {
			admin.GET("/transactions", cfg.LedgerHandler.List)
			admin.GET("/transactions/summary", cfg.LedgerHandler.Summary)
		}
	}

	return r
}
