package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain"
)

var LedgerAggregateContract = Contract{
	Name:             "Billing.LedgerAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	JoinsAmbientTx:   true,
	Notes:            "Append-only payment ledger keyed by gateway transaction code; dashboards read through the table repo.",
}

// LedgerAggregate owns at-most-once recording per transaction code.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeRetryable, CodeInternal.
type LedgerAggregate interface {
	Aggregate

	// RecordIfAbsent inserts the entry unless the code is already recorded.
	// IsNew is true for exactly one caller per code, concurrent or not.
	RecordIfAbsent(ctx context.Context, in RecordTransactionInput) (RecordTransactionResult, error)
}

type RecordTransactionInput struct {
	TransactionCode string
	LearnerID       uuid.UUID
	CourseID        uuid.UUID
	Amount          int64
	PaymentMethod   string
	OrderRef        string
	BankCode        string
	ResponseCode    string
	Status          string
	Message         string
	RecordedAt      time.Time
}

type RecordTransactionResult struct {
	Transaction domain.Transaction
	IsNew       bool
}
