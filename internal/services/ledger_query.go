package services

import (
	"context"
	"sort"
	"time"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

const (
	BucketDay   = "day"
	BucketMonth = "month"
)

// LedgerQueryService is the read-only reporting surface over the ledger.
type LedgerQueryService interface {
	List(ctx context.Context, f repos.TransactionFilter, limit, offset int) (*TransactionPage, error)
	Summary(ctx context.Context, f repos.TransactionFilter, bucket string) (*LedgerSummary, error)
}

type TransactionPage struct {
	Items  []*types.Transaction `json:"items"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

type BucketSum struct {
	Bucket string `json:"bucket"`
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

type LedgerSummary struct {
	ByStatus []repos.StatusSum `json:"by_status"`
	Bucket   string            `json:"bucket"`
	Buckets  []BucketSum       `json:"buckets"`
}

type ledgerQueryService struct {
	log          *logger.Logger
	transactions repos.TransactionRepo
	loc          *time.Location
}

// NewLedgerQueryService buckets by calendar day or month in loc (UTC when nil).
func NewLedgerQueryService(baseLog *logger.Logger, transactions repos.TransactionRepo, loc *time.Location) LedgerQueryService {
	if loc == nil {
		loc = time.UTC
	}
	return &ledgerQueryService{
		log:          baseLog.With("service", "LedgerQueryService"),
		transactions: transactions,
		loc:          loc,
	}
}

func (s *ledgerQueryService) List(ctx context.Context, f repos.TransactionFilter, limit, offset int) (*TransactionPage, error) {
	if err := validateFilter("LedgerQuery.List", f); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	rows, total, err := s.transactions.List(dbctx.Context{Ctx: ctx}, f, limit, offset)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*types.Transaction{}
	}
	return &TransactionPage{Items: rows, Total: total, Limit: repos.ClampListLimit(limit), Offset: offset}, nil
}

func (s *ledgerQueryService) Summary(ctx context.Context, f repos.TransactionFilter, bucket string) (*LedgerSummary, error) {
	const op = "LedgerQuery.Summary"
	if err := validateFilter(op, f); err != nil {
		return nil, err
	}
	var layout string
	switch bucket {
	case "", BucketDay:
		bucket, layout = BucketDay, "2006-01-02"
	case BucketMonth:
		layout = "2006-01"
	default:
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "bucket must be day or month", nil)
	}

	dbc := dbctx.Context{Ctx: ctx}
	sums, err := s.transactions.SumByStatus(dbc, f)
	if err != nil {
		return nil, err
	}
	points, err := s.transactions.ListAmountPoints(dbc, f)
	if err != nil {
		return nil, err
	}

	type key struct{ bucket, status string }
	acc := map[key]*BucketSum{}
	for _, p := range points {
		k := key{bucket: p.CreatedAt.In(s.loc).Format(layout), status: p.Status}
		b := acc[k]
		if b == nil {
			b = &BucketSum{Bucket: k.bucket, Status: k.status}
			acc[k] = b
		}
		b.Count++
		b.Amount += p.Amount
	}
	buckets := make([]BucketSum, 0, len(acc))
	for _, b := range acc {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Bucket != buckets[j].Bucket {
			return buckets[i].Bucket < buckets[j].Bucket
		}
		return buckets[i].Status < buckets[j].Status
	})
	if sums == nil {
		sums = []repos.StatusSum{}
	}
	return &LedgerSummary{ByStatus: sums, Bucket: bucket, Buckets: buckets}, nil
}

func validateFilter(op string, f repos.TransactionFilter) error {
	if f.Status != "" && !types.ValidTransactionStatus(f.Status) {
		return domainagg.NewError(domainagg.CodeValidation, op, "unknown status", nil)
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return domainagg.NewError(domainagg.CodeValidation, op, "from must be before to", nil)
	}
	return nil
}
