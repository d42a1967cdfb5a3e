package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type fakeEnrollment struct {
	join     func(learnerID, courseID uuid.UUID) (*types.Enrollment, error)
	complete func(learnerID, courseID, lessonID uuid.UUID) (domainagg.CompleteLessonResult, error)
	quiz     func(in domainagg.RecordQuizResultInput) (domainagg.RecordQuizResultResult, error)
}

func (f *fakeEnrollment) Join(_ context.Context, learnerID, courseID uuid.UUID) (*types.Enrollment, error) {
	return f.join(learnerID, courseID)
}

func (f *fakeEnrollment) CompleteLesson(_ context.Context, learnerID, courseID, lessonID uuid.UUID) (domainagg.CompleteLessonResult, error) {
	return f.complete(learnerID, courseID, lessonID)
}

func (f *fakeEnrollment) RecordQuizResult(_ context.Context, in domainagg.RecordQuizResultInput) (domainagg.RecordQuizResultResult, error) {
	return f.quiz(in)
}

func (f *fakeEnrollment) Get(_ context.Context, _, _ uuid.UUID) (*services.EnrollmentView, error) {
	return nil, domainagg.ErrNotEnrolled
}

func (f *fakeEnrollment) ListForLearner(_ context.Context, _ uuid.UUID) ([]*types.Enrollment, error) {
	return []*types.Enrollment{}, nil
}

type fakePayments struct {
	handle func(q url.Values) (*services.PaymentResult, error)
	build  func(in services.CheckoutInput) (*services.Checkout, error)
}

func (f *fakePayments) BuildPaymentURL(_ context.Context, in services.CheckoutInput) (*services.Checkout, error) {
	return f.build(in)
}

func (f *fakePayments) HandleReturn(_ context.Context, q url.Values) (*services.PaymentResult, error) {
	return f.handle(q)
}

type fakeCertificates struct {
	created  bool
	claimErr error
}

func (f *fakeCertificates) Claim(_ context.Context, learnerID, courseID uuid.UUID) (*types.Certificate, bool, error) {
	if f.claimErr != nil {
		return nil, false, f.claimErr
	}
	return &types.Certificate{ID: uuid.New(), LearnerID: learnerID, CourseID: courseID, Code: "ABCD-EFGH"}, f.created, nil
}

func (f *fakeCertificates) GetByCode(_ context.Context, code string) (*services.PublicCertificate, error) {
	if code != "ABCD-EFGH" {
		return nil, domainagg.ErrNotFound
	}
	return &services.PublicCertificate{Code: code, LearnerName: "Lan"}, nil
}

func (f *fakeCertificates) ListForLearner(_ context.Context, _ uuid.UUID) ([]*types.Certificate, error) {
	return nil, nil
}

func (f *fakeCertificates) RenderBadge(_ context.Context, code string) ([]byte, error) {
	if code != "ABCD-EFGH" {
		return nil, domainagg.ErrNotFound
	}
	return []byte("\x89PNG"), nil
}

type fakeLedger struct {
	lastFilter repos.TransactionFilter
	lastLimit  int
}

func (f *fakeLedger) List(_ context.Context, filter repos.TransactionFilter, limit, offset int) (*services.TransactionPage, error) {
	f.lastFilter, f.lastLimit = filter, limit
	return &services.TransactionPage{Limit: limit, Offset: offset}, nil
}

func (f *fakeLedger) Summary(_ context.Context, filter repos.TransactionFilter, bucket string) (*services.LedgerSummary, error) {
	f.lastFilter = filter
	return &services.LedgerSummary{Bucket: bucket}, nil
}

// asUser stands in for the auth middleware.
func asUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: id, Role: types.RoleLearner})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func do(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
