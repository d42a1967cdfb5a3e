package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

// defaultCASAttempts bounds compare-and-set retries for a single write.
const defaultCASAttempts = 4

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	// Now is the clock used when inputs carry no timestamp.
	Now func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

func (d BaseDeps) at(t time.Time) time.Time {
	if t.IsZero() {
		return d.Now().UTC()
	}
	return t.UTC()
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// executeWriteWithRetry reruns fn in a fresh transaction while it fails with a
// conflict, up to attempts times. Inside a caller-owned transaction there is
// nothing fresh to retry against, so it runs once.
func executeWriteWithRetry(ctx context.Context, deps BaseDeps, op string, attempts int, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	if attempts <= 0 {
		attempts = defaultCASAttempts
	}
	if dbctx.TxFrom(ctx) != nil {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = executeWrite(ctx, deps, op, fn)
		if err == nil || !domainagg.IsCode(err, domainagg.CodeConflict) {
			return err
		}
		if ctx.Err() != nil {
			return MapError(op, ctx.Err())
		}
		if i < attempts-1 {
			deps.Hooks.IncRetry(op)
		}
	}
	return err
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
