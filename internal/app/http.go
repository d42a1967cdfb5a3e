package app

import (
	"github.com/yungbote/coursemarket-backend/internal/http"
	httpH "github.com/yungbote/coursemarket-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursemarket-backend/internal/http/middleware"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Enrollment  *httpH.EnrollmentHandler
	Payment     *httpH.PaymentHandler
	Certificate *httpH.CertificateHandler
	Ledger      *httpH.LedgerHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:      httpH.NewHealthHandler(),
		Enrollment:  httpH.NewEnrollmentHandler(log, services.Enrollment),
		Certificate: httpH.NewCertificateHandler(log, services.Certificate),
		Ledger:      httpH.NewLedgerHandler(log, services.Ledger),
	}
	if services.Payment != nil {
		h.Payment = httpH.NewPaymentHandler(log, services.Payment, cfg.PaymentResultRedirectURL)
	}
	return h
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	return http.NewServer(cfg.HTTPAddr, http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		ServiceName:        serviceName,
		AuthMiddleware:     middleware.Auth,
		HealthHandler:      handlers.Health,
		EnrollmentHandler:  handlers.Enrollment,
		PaymentHandler:     handlers.Payment,
		CertificateHandler: handlers.Certificate,
		LedgerHandler:      handlers.Ledger,
	})
}
