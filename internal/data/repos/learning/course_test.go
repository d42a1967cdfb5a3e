package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

func TestCourseRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCourseRepo(db, testutil.Logger(t))
	if rows, err := repo.Create(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("Create empty: rows=%v err=%v", rows, err)
	}
	rows, err := repo.Create(dbc, []*types.Course{
		{Title: "Intro to Go", Price: 0},
		{Title: "Payments in Practice", Price: 250000},
	})
	if err != nil || len(rows) != 2 {
		t.Fatalf("Create: rows=%v err=%v", rows, err)
	}
	if rows[0].ID == uuid.Nil || rows[1].ID == uuid.Nil {
		t.Fatalf("expected ids to be assigned")
	}

	got, err := repo.GetByID(dbc, rows[1].ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got.Price != 250000 || got.IsFree() {
		t.Fatalf("unexpected course: %+v", got)
	}
	if free, _ := repo.GetByID(dbc, rows[0].ID); free == nil || !free.IsFree() {
		t.Fatalf("expected free course, got %+v", free)
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", missing, err)
	}
}
