package aggregates

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/domain/billing"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

type LedgerAggregateDeps struct {
	Base BaseDeps

	Transactions repos.TransactionRepo
}

type ledgerAggregate struct {
	deps LedgerAggregateDeps
}

func NewLedgerAggregate(deps LedgerAggregateDeps) domainagg.LedgerAggregate {
	deps.Base = deps.Base.withDefaults()
	return &ledgerAggregate{deps: deps}
}

func (a *ledgerAggregate) Contract() domainagg.Contract {
	return domainagg.LedgerAggregateContract
}

func (a *ledgerAggregate) RecordIfAbsent(ctx context.Context, in domainagg.RecordTransactionInput) (domainagg.RecordTransactionResult, error) {
	const op = "Billing.Ledger.RecordIfAbsent"
	var out domainagg.RecordTransactionResult

	code := strings.TrimSpace(in.TransactionCode)
	status := strings.ToLower(strings.TrimSpace(in.Status))
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = types.PaymentMethodVNPay
	}
	switch {
	case code == "":
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing transaction_code", nil)
	case in.LearnerID == uuid.Nil || in.CourseID == uuid.Nil:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing learner_id or course_id", nil)
	case in.Amount < 0:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "amount must be >= 0", nil)
	case !billing.ValidStatus(status):
		return out, domainagg.NewError(domainagg.CodeValidation, op, "unknown transaction status", nil)
	}
	if a.deps.Transactions == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "ledger repo not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row := &types.Transaction{
			ID:              uuid.New(),
			LearnerID:       in.LearnerID,
			CourseID:        in.CourseID,
			Amount:          in.Amount,
			PaymentMethod:   method,
			TransactionCode: code,
			OrderRef:        strings.TrimSpace(in.OrderRef),
			BankCode:        strings.TrimSpace(in.BankCode),
			ResponseCode:    strings.TrimSpace(in.ResponseCode),
			Status:          status,
			Message:         strings.TrimSpace(in.Message),
			CreatedAt:       a.deps.Base.at(in.RecordedAt),
		}
		created, err := a.deps.Transactions.InsertIfAbsent(dbc, row)
		if err != nil {
			return err
		}
		if created {
			out = domainagg.RecordTransactionResult{Transaction: *row, IsNew: true}
			return nil
		}
		existing, err := a.deps.Transactions.GetByCode(dbc, code)
		if err != nil {
			return err
		}
		if existing == nil {
			return InvariantError("ledger insert skipped but no row holds the transaction code")
		}
		out = domainagg.RecordTransactionResult{Transaction: *existing, IsNew: false}
		return nil
	})
	return out, err
}
