package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"

	repotest "github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); !domainagg.IsCode(MapError("op", err), domainagg.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCASGuardUpdateByVersion(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := repotest.SeedUser(t, ctx, tx, "")
	c, _ := repotest.SeedCourse(t, ctx, tx, 0, 1)
	e := repotest.SeedEnrollment(t, ctx, tx, u.ID, c.ID)

	g := NewCASGuard(db)
	ok, err := g.UpdateByVersion(dbc, "enrollment", e.ID, 1, map[string]any{"progress": 10, "version": 2})
	if err != nil || !ok {
		t.Fatalf("first CAS: ok=%v err=%v", ok, err)
	}
	ok, err = g.UpdateByVersion(dbc, "enrollment", e.ID, 1, map[string]any{"progress": 20, "version": 2})
	if err != nil || ok {
		t.Fatalf("stale CAS should not apply: ok=%v err=%v", ok, err)
	}
	if _, err := g.UpdateByVersion(dbc, "enrollment", uuid.Nil, 1, map[string]any{"progress": 1}); err == nil {
		t.Fatalf("expected validation error for nil id")
	}
}
