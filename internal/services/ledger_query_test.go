package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	repotest "github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

func TestLedgerQuerySummaryBuckets(t *testing.T) {
	s := newSvcStack(t)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, _ := repotest.SeedCourse(t, ctx, s.db, 100, 1)

	d := func(m time.Month, day, hour int) time.Time { return time.Date(2026, m, day, hour, 0, 0, 0, time.UTC) }
	repotest.SeedTransaction(t, ctx, s.db, u.ID, c.ID, types.TransactionStatusSuccess, 100, d(9, 1, 1))
	repotest.SeedTransaction(t, ctx, s.db, u.ID, c.ID, types.TransactionStatusSuccess, 200, d(9, 1, 23))
	repotest.SeedTransaction(t, ctx, s.db, u.ID, c.ID, types.TransactionStatusFailed, 300, d(9, 2, 5))
	repotest.SeedTransaction(t, ctx, s.db, u.ID, c.ID, types.TransactionStatusSuccess, 400, d(10, 3, 5))

	f := repos.TransactionFilter{CourseID: c.ID}
	day, err := s.ledger.Summary(ctx, f, BucketDay)
	if err != nil {
		t.Fatalf("Summary(day): %v", err)
	}
	want := []BucketSum{
		{Bucket: "2026-09-01", Status: "success", Count: 2, Amount: 300},
		{Bucket: "2026-09-02", Status: "failed", Count: 1, Amount: 300},
		{Bucket: "2026-10-03", Status: "success", Count: 1, Amount: 400},
	}
	if len(day.Buckets) != len(want) {
		t.Fatalf("day buckets: %+v", day.Buckets)
	}
	for i := range want {
		if day.Buckets[i] != want[i] {
			t.Fatalf("bucket %d: got %+v want %+v", i, day.Buckets[i], want[i])
		}
	}

	month, err := s.ledger.Summary(ctx, f, BucketMonth)
	if err != nil {
		t.Fatalf("Summary(month): %v", err)
	}
	if len(month.Buckets) != 3 || month.Buckets[0].Bucket != "2026-09" || month.Buckets[1].Status != "success" || month.Buckets[1].Amount != 300 {
		t.Fatalf("month buckets: %+v", month.Buckets)
	}
	var successTotal int64
	for _, st := range month.ByStatus {
		if st.Status == types.TransactionStatusSuccess {
			successTotal = st.Amount
		}
	}
	if successTotal != 700 {
		t.Fatalf("success sum: %d", successTotal)
	}

	if _, err := s.ledger.Summary(ctx, f, "week"); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("bad bucket: want validation, got %v", err)
	}
}

func TestLedgerQueryListFilters(t *testing.T) {
	s := newSvcStack(t)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, _ := repotest.SeedCourse(t, ctx, s.db, 100, 1)
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		repotest.SeedTransaction(t, ctx, s.db, u.ID, c.ID, types.TransactionStatusSuccess, 100, base.Add(time.Duration(i)*time.Hour))
	}

	page, err := s.ledger.List(ctx, repos.TransactionFilter{LearnerID: u.ID, From: base.Add(time.Hour), To: base.Add(4 * time.Hour)}, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Limit != 2 {
		t.Fatalf("unexpected page: total=%d items=%d", page.Total, len(page.Items))
	}
	if !page.Items[0].CreatedAt.After(page.Items[1].CreatedAt) {
		t.Fatalf("expected newest first")
	}

	if _, err := s.ledger.List(ctx, repos.TransactionFilter{Status: "bogus"}, 10, 0); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("bad status: want validation, got %v", err)
	}
	if _, err := s.ledger.List(ctx, repos.TransactionFilter{From: base, To: base}, 10, 0); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("empty range: want validation, got %v", err)
	}
}

func TestLedgerQueryListReportsAppliedLimit(t *testing.T) {
	s := newSvcStack(t)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, s.db, "")
	c, _ := repotest.SeedCourse(t, ctx, s.db, 100, 1)
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < repos.MaxListLimit+10; i++ {
		repotest.SeedTransaction(t, ctx, s.db, u.ID, c.ID, types.TransactionStatusSuccess, 100, base.Add(time.Duration(i)*time.Minute))
	}
	f := repos.TransactionFilter{LearnerID: u.ID}

	page, err := s.ledger.List(ctx, f, 500, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Limit != repos.MaxListLimit || len(page.Items) != page.Limit {
		t.Fatalf("page reports limit %d but returned %d rows", page.Limit, len(page.Items))
	}
	next, err := s.ledger.List(ctx, f, 500, page.Offset+page.Limit)
	if err != nil {
		t.Fatalf("List next page: %v", err)
	}
	if int64(len(page.Items)+len(next.Items)) != page.Total {
		t.Fatalf("pages cover %d of %d rows", len(page.Items)+len(next.Items), page.Total)
	}

	page, err = s.ledger.List(ctx, f, 0, 0)
	if err != nil || page.Limit != repos.DefaultListLimit || len(page.Items) != repos.DefaultListLimit {
		t.Fatalf("default limit: limit=%d items=%d err=%v", page.Limit, len(page.Items), err)
	}
}
