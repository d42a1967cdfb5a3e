package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/vnpay"
)

const (
	PaymentOutcomeSuccess        = "success"
	PaymentOutcomeGatewayFailure = "gateway_failure"
)

type PaymentService interface {
	BuildPaymentURL(ctx context.Context, in CheckoutInput) (*Checkout, error)
	// HandleReturn authenticates a gateway return and settles it exactly
	// once per gateway transaction. A gateway-reported failure is a result,
	// not an error.
	HandleReturn(ctx context.Context, query url.Values) (*PaymentResult, error)
}

type CheckoutInput struct {
	LearnerID uuid.UUID
	CourseID  uuid.UUID
	ClientIP  string
	BankCode  string
}

type Checkout struct {
	PaymentURL string `json:"payment_url"`
	OrderRef   string `json:"order_ref"`
	Amount     int64  `json:"amount"`
}

type PaymentResult struct {
	Outcome         string    `json:"outcome"`
	CourseID        uuid.UUID `json:"course_id"`
	TransactionCode string    `json:"transaction_code"`
	ResponseCode    string    `json:"response_code"`
	Message         string    `json:"message"`
	// Replayed is true when this gateway transaction was already settled.
	Replayed bool `json:"replayed"`
	// Enrolled is true when this call created the enrollment.
	Enrolled bool `json:"enrolled"`
}

func (r *PaymentResult) Succeeded() bool { return r != nil && r.Outcome == PaymentOutcomeSuccess }

type paymentService struct {
	log         *logger.Logger
	gateway     *vnpay.Client
	runner      aggregates.TxRunner
	catalog     CatalogService
	enrollments repos.EnrollmentRepo
	ledger      domainagg.LedgerAggregate
	enrollment  domainagg.EnrollmentAggregate
	metrics     *observability.Metrics
	now         func() time.Time
}

type PaymentServiceDeps struct {
	Log         *logger.Logger
	Gateway     *vnpay.Client
	Runner      aggregates.TxRunner
	Catalog     CatalogService
	Enrollments repos.EnrollmentRepo
	Ledger      domainagg.LedgerAggregate
	Enrollment  domainagg.EnrollmentAggregate
	Metrics     *observability.Metrics
}

func NewPaymentService(deps PaymentServiceDeps) PaymentService {
	return &paymentService{
		log:         deps.Log.With("service", "PaymentService"),
		gateway:     deps.Gateway,
		runner:      deps.Runner,
		catalog:     deps.Catalog,
		enrollments: deps.Enrollments,
		ledger:      deps.Ledger,
		enrollment:  deps.Enrollment,
		metrics:     deps.Metrics,
		now:         time.Now,
	}
}

func (s *paymentService) BuildPaymentURL(ctx context.Context, in CheckoutInput) (*Checkout, error) {
	const op = "PaymentService.BuildPaymentURL"
	ctx, span := observability.StartSpan(ctx, op, attribute.String("course_id", in.CourseID.String()))
	defer span.End()

	course, err := s.catalog.GetCourse(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	if course.IsFree() {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "course is free, enroll directly", nil)
	}
	existing, err := s.enrollments.GetByLearnerCourse(dbctx.Context{Ctx: ctx}, in.LearnerID, in.CourseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domainagg.Reject(domainagg.CodePreconditionFailed, op, domainagg.ErrAlreadyEnrolled)
	}

	ref := vnpay.NewOrderRef(s.now())
	payURL, err := s.gateway.BuildPaymentURL(vnpay.PaymentRequest{
		OrderRef:  ref,
		CourseID:  course.ID,
		LearnerID: in.LearnerID,
		Amount:    course.Price,
		ClientIP:  in.ClientIP,
		BankCode:  in.BankCode,
	})
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "could not build payment url", err)
	}
	s.log.Info("checkout started", "learner_id", in.LearnerID, "course_id", course.ID, "order_ref", ref, "amount", course.Price)
	return &Checkout{PaymentURL: payURL, OrderRef: ref, Amount: course.Price}, nil
}

func (s *paymentService) HandleReturn(ctx context.Context, query url.Values) (*PaymentResult, error) {
	const op = "PaymentService.HandleReturn"
	ctx, span := observability.StartSpan(ctx, op)
	defer span.End()

	p, err := s.gateway.ParseReturn(query)
	if err != nil {
		switch {
		case errors.Is(err, domainagg.ErrInvalidSignature):
			s.metrics.IncPaymentReturn("invalid_signature")
			s.log.Warn("rejected payment return with bad signature")
		case errors.Is(err, domainagg.ErrMalformedCallback):
			s.metrics.IncPaymentReturn("malformed")
			s.log.Warn("rejected malformed payment return", "error", err)
		}
		span.SetStatus(codes.Error, "rejected")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("course_id", p.CourseID.String()),
		attribute.String("response_code", p.ResponseCode),
	)

	status := types.TransactionStatusFailed
	if p.Succeeded() {
		status = types.TransactionStatusSuccess
	}
	recordedAt := p.PayDate
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	var out *PaymentResult
	err = s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		rec, err := s.ledger.RecordIfAbsent(dbc.Ctx, domainagg.RecordTransactionInput{
			TransactionCode: p.IdempotencyKey(),
			LearnerID:       p.LearnerID,
			CourseID:        p.CourseID,
			Amount:          p.Amount,
			PaymentMethod:   types.PaymentMethodVNPay,
			OrderRef:        p.OrderRef,
			BankCode:        p.BankCode,
			ResponseCode:    p.ResponseCode,
			Status:          status,
			Message:         vnpay.ResponseMessage(p.ResponseCode),
			RecordedAt:      recordedAt,
		})
		if err != nil {
			return err
		}
		out = resultFromTransaction(rec.Transaction)
		out.Replayed = !rec.IsNew
		if !rec.IsNew || !rec.Transaction.Succeeded() {
			return nil
		}
		grant, err := s.enrollment.GrantFromPayment(dbc.Ctx, domainagg.GrantFromPaymentInput{
			LearnerID: p.LearnerID,
			CourseID:  p.CourseID,
			GrantedAt: recordedAt,
		})
		if err != nil {
			return err
		}
		out.Enrolled = grant.Created
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, "settle failed")
		s.log.Error("payment settlement failed", "order_ref", p.OrderRef, "error", err)
		return nil, err
	}

	switch {
	case out.Replayed:
		s.metrics.IncPaymentReturn("replay")
		s.log.Info("payment return replayed", "transaction_code", out.TransactionCode)
	case out.Succeeded():
		s.metrics.IncPaymentReturn(PaymentOutcomeSuccess)
		if out.Enrolled {
			s.metrics.IncEnrollmentGranted(types.EnrollmentSourcePayment)
		}
		s.log.Info("payment settled", "transaction_code", out.TransactionCode, "learner_id", p.LearnerID, "course_id", p.CourseID, "amount", p.Amount)
	default:
		s.metrics.IncPaymentReturn(PaymentOutcomeGatewayFailure)
		s.log.Info("payment not completed", "transaction_code", out.TransactionCode, "response_code", p.ResponseCode)
	}
	return out, nil
}

func resultFromTransaction(t types.Transaction) *PaymentResult {
	outcome := PaymentOutcomeGatewayFailure
	if t.Succeeded() {
		outcome = PaymentOutcomeSuccess
	}
	return &PaymentResult{
		Outcome:         outcome,
		CourseID:        t.CourseID,
		TransactionCode: t.TransactionCode,
		ResponseCode:    t.ResponseCode,
		Message:         t.Message,
	}
}
