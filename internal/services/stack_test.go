package services

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	repotest "github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/certimage"
	"github.com/yungbote/coursemarket-backend/internal/platform/vnpay"
)

const (
	testTmnCode = "DEMO0001"
	testSecret  = "TESTSECRET"
)

type svcStack struct {
	db           *gorm.DB
	gateway      *vnpay.Client
	transactions repos.TransactionRepo
	enrollments  repos.EnrollmentRepo

	catalog     CatalogService
	enrollment  EnrollmentService
	payment     PaymentService
	certificate CertificateService
	ledger      LedgerQueryService
	cache       *memCache
}

func newSvcStack(t *testing.T) *svcStack {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	metrics := observability.New(prometheus.NewRegistry())

	courses := repos.NewCourseRepo(db, log)
	lessons := repos.NewLessonRepo(db, log)
	enrollments := repos.NewEnrollmentRepo(db, log)
	quizResults := repos.NewEnrollmentQuizResultRepo(db, log)
	certificates := repos.NewCertificateRepo(db, log)
	transactions := repos.NewTransactionRepo(db, log)

	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewMetricsHooks(metrics)}
	enrollmentAgg := aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
		Base:        base,
		Courses:     courses,
		Lessons:     lessons,
		Quizzes:     repos.NewQuizRepo(db, log),
		Enrollments: enrollments,
		QuizResults: quizResults,
	})
	ledgerAgg := aggregates.NewLedgerAggregate(aggregates.LedgerAggregateDeps{Base: base, Transactions: transactions})
	certAgg := aggregates.NewCertificateAggregate(aggregates.CertificateAggregateDeps{
		Base:         base,
		Enrollments:  enrollments,
		Certificates: certificates,
	})

	gateway := vnpay.NewClient(vnpay.Config{
		PaymentURL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		TmnCode:    testTmnCode,
		HashSecret: testSecret,
		ReturnURL:  "https://api.example.test/api/payments/vnpay/return",
	})
	renderer, err := certimage.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	s := &svcStack{
		db:           db,
		gateway:      gateway,
		transactions: transactions,
		enrollments:  enrollments,
		cache:        newMemCache(),
	}
	s.catalog = NewCatalogService(log, courses, lessons)
	s.enrollment = NewEnrollmentService(log, enrollmentAgg, enrollments, quizResults, metrics)
	s.payment = NewPaymentService(PaymentServiceDeps{
		Log:         log,
		Gateway:     gateway,
		Runner:      aggregates.NewGormTxRunner(db),
		Catalog:     s.catalog,
		Enrollments: enrollments,
		Ledger:      ledgerAgg,
		Enrollment:  enrollmentAgg,
		Metrics:     metrics,
	})
	s.certificate = NewCertificateService(CertificateServiceDeps{
		Log:          log,
		Aggregate:    certAgg,
		Certificates: certificates,
		Users:        repos.NewUserRepo(db, log),
		Courses:      courses,
		Cache:        s.cache,
		CacheTTL:     time.Minute,
		Renderer:     renderer,
		Metrics:      metrics,
	})
	s.ledger = NewLedgerQueryService(log, transactions, time.UTC)
	return s
}

// gatewayReturn builds a callback the way the gateway would sign it.
func gatewayReturn(course, learner uuid.UUID, amount int64, responseCode, txnNo, orderRef string) url.Values {
	q := url.Values{}
	q.Set("vnp_TmnCode", testTmnCode)
	q.Set("vnp_Amount", strconv.FormatInt(amount*100, 10))
	q.Set("vnp_OrderInfo", vnpay.EncodeOrderInfo(course, learner))
	q.Set("vnp_TxnRef", orderRef)
	q.Set("vnp_ResponseCode", responseCode)
	q.Set("vnp_TransactionStatus", responseCode)
	q.Set("vnp_TransactionNo", txnNo)
	q.Set("vnp_BankCode", "NCB")
	q.Set("vnp_PayDate", "20261015121000")
	q.Set(vnpay.ParamSecureHash, vnpay.Sign(vnpay.Canonicalize(q), testSecret))
	return q
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	m.sets++
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memCache) Close() error { return nil }
