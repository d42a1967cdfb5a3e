package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	TransactionStatusPending  = "pending"
	TransactionStatusSuccess  = "success"
	TransactionStatusFailed   = "failed"
	TransactionStatusRefunded = "refunded"
)

const PaymentMethodVNPay = "vnpay"

// Transaction is one immutable ledger entry per gateway transaction code.
// Rows are inserted once and never updated.
type Transaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID       uuid.UUID `gorm:"type:uuid;not null;index:idx_payment_transaction_learner_course,priority:1" json:"learner_id"`
	CourseID        uuid.UUID `gorm:"type:uuid;not null;index:idx_payment_transaction_learner_course,priority:2" json:"course_id"`
	Amount          int64     `gorm:"not null" json:"amount"`
	PaymentMethod   string    `gorm:"not null;column:payment_method" json:"payment_method"`
	TransactionCode string    `gorm:"not null;uniqueIndex:idx_payment_transaction_code" json:"transaction_code"`
	OrderRef        string    `gorm:"column:order_ref;index" json:"order_ref"`
	BankCode        string    `gorm:"column:bank_code" json:"bank_code,omitempty"`
	ResponseCode    string    `gorm:"column:response_code" json:"response_code"`
	Status          string    `gorm:"not null;index:idx_payment_transaction_status_created,priority:1" json:"status"`
	Message         string    `gorm:"column:message" json:"message"`
	CreatedAt       time.Time `gorm:"not null;index:idx_payment_transaction_status_created,priority:2" json:"created_at"`
}

func (Transaction) TableName() string { return "payment_transaction" }

func (t Transaction) Succeeded() bool { return t.Status == TransactionStatusSuccess }

func ValidStatus(s string) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed, TransactionStatusRefunded:
		return true
	}
	return false
}
