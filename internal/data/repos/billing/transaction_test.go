package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

func TestTransactionRepoInsertIfAbsent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewTransactionRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "")
	c, _ := testutil.SeedCourse(t, ctx, tx, 500000, 1)
	code := "TXN-" + uuid.NewString()

	row := &types.Transaction{
		LearnerID:       u.ID,
		CourseID:        c.ID,
		Amount:          500000,
		PaymentMethod:   types.PaymentMethodVNPay,
		TransactionCode: code,
		Status:          types.TransactionStatusSuccess,
	}
	created, err := repo.InsertIfAbsent(dbc, row)
	if err != nil || !created {
		t.Fatalf("first insert: created=%v err=%v", created, err)
	}
	again := &types.Transaction{
		LearnerID:       u.ID,
		CourseID:        c.ID,
		Amount:          1,
		PaymentMethod:   types.PaymentMethodVNPay,
		TransactionCode: code,
		Status:          types.TransactionStatusFailed,
	}
	created, err = repo.InsertIfAbsent(dbc, again)
	if err != nil || created {
		t.Fatalf("dup insert: created=%v err=%v", created, err)
	}
	got, err := repo.GetByCode(dbc, code)
	if err != nil || got == nil || got.ID != row.ID || got.Status != types.TransactionStatusSuccess || got.Amount != 500000 {
		t.Fatalf("GetByCode: got=%+v err=%v", got, err)
	}
	if missing, err := repo.GetByCode(dbc, "nope"); err != nil || missing != nil {
		t.Fatalf("GetByCode(missing): got=%v err=%v", missing, err)
	}
}

func TestTransactionRepoQueries(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewTransactionRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "")
	c, _ := testutil.SeedCourse(t, ctx, tx, 100, 1)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testutil.SeedTransaction(t, ctx, tx, u.ID, c.ID, types.TransactionStatusSuccess, 100, base)
	testutil.SeedTransaction(t, ctx, tx, u.ID, c.ID, types.TransactionStatusSuccess, 200, base.Add(24*time.Hour))
	testutil.SeedTransaction(t, ctx, tx, u.ID, c.ID, types.TransactionStatusFailed, 300, base.Add(48*time.Hour))

	f := TransactionFilter{LearnerID: u.ID}
	rows, total, err := repo.List(dbc, f, 2, 0)
	if err != nil || total != 3 || len(rows) != 2 {
		t.Fatalf("List: total=%d len=%d err=%v", total, len(rows), err)
	}
	if rows[0].Amount != 300 {
		t.Fatalf("expected newest first, got %d", rows[0].Amount)
	}

	sums, err := repo.SumByStatus(dbc, f)
	if err != nil || len(sums) != 2 {
		t.Fatalf("SumByStatus: %v err=%v", sums, err)
	}
	bySt := map[string]StatusSum{}
	for _, s := range sums {
		bySt[s.Status] = s
	}
	if bySt[types.TransactionStatusSuccess].Amount != 300 || bySt[types.TransactionStatusSuccess].Count != 2 {
		t.Fatalf("success sum: %+v", bySt[types.TransactionStatusSuccess])
	}
	if bySt[types.TransactionStatusFailed].Amount != 300 || bySt[types.TransactionStatusFailed].Count != 1 {
		t.Fatalf("failed sum: %+v", bySt[types.TransactionStatusFailed])
	}

	ranged := TransactionFilter{LearnerID: u.ID, From: base.Add(time.Hour), To: base.Add(47 * time.Hour)}
	pts, err := repo.ListAmountPoints(dbc, ranged)
	if err != nil || len(pts) != 1 || pts[0].Amount != 200 {
		t.Fatalf("ListAmountPoints: %v err=%v", pts, err)
	}
}
