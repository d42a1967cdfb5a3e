package learning

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

func TestCertificateRepoInsertIfAbsent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCertificateRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "")
	other := testutil.SeedUser(t, ctx, tx, "")
	c, _ := testutil.SeedCourse(t, ctx, tx, 0, 1)
	now := time.Now().UTC()

	created, err := repo.InsertIfAbsent(dbc, &types.Certificate{LearnerID: u.ID, CourseID: c.ID, Code: "AAAA-BBBB", IssuedAt: now})
	if err != nil || !created {
		t.Fatalf("first insert: created=%v err=%v", created, err)
	}

	// Same pair, new code: ignored.
	created, err = repo.InsertIfAbsent(dbc, &types.Certificate{LearnerID: u.ID, CourseID: c.ID, Code: "CCCC-DDDD", IssuedAt: now})
	if err != nil || created {
		t.Fatalf("pair dup: created=%v err=%v", created, err)
	}

	// Different pair, colliding code: ignored, and the pair stays absent.
	created, err = repo.InsertIfAbsent(dbc, &types.Certificate{LearnerID: other.ID, CourseID: c.ID, Code: "AAAA-BBBB", IssuedAt: now})
	if err != nil || created {
		t.Fatalf("code dup: created=%v err=%v", created, err)
	}
	if got, err := repo.GetByLearnerCourse(dbc, other.ID, c.ID); err != nil || got != nil {
		t.Fatalf("collision should not insert: got=%v err=%v", got, err)
	}

	got, err := repo.GetByCode(dbc, "AAAA-BBBB")
	if err != nil || got == nil || got.LearnerID != u.ID {
		t.Fatalf("GetByCode: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByLearner(dbc, u.ID); err != nil || len(rows) != 1 {
		t.Fatalf("ListByLearner: len=%d err=%v", len(rows), err)
	}
}
