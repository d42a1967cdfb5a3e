package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

// TransactionFilter narrows ledger reads. Zero values mean "any".
// From is inclusive, To is exclusive.
type TransactionFilter struct {
	Status    string
	LearnerID uuid.UUID
	CourseID  uuid.UUID
	From      time.Time
	To        time.Time
}

type StatusSum struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

// AmountPoint is the minimal projection used for time bucketing.
type AmountPoint struct {
	Status    string
	Amount    int64
	CreatedAt time.Time
}

type TransactionRepo interface {
	// InsertIfAbsent inserts unless transaction_code already exists and
	// reports whether this call created the row.
	InsertIfAbsent(dbc dbctx.Context, row *types.Transaction) (bool, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Transaction, error)

	List(dbc dbctx.Context, f TransactionFilter, limit, offset int) ([]*types.Transaction, int64, error)
	SumByStatus(dbc dbctx.Context, f TransactionFilter) ([]StatusSum, error)
	ListAmountPoints(dbc dbctx.Context, f TransactionFilter) ([]AmountPoint, error)
}

type transactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
	return &transactionRepo{db: db, log: baseLog.With("repo", "TransactionRepo")}
}

func (r *transactionRepo) InsertIfAbsent(dbc dbctx.Context, row *types.Transaction) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return false, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_code"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetByCode returns (nil, nil) when the code has not been recorded.
func (r *transactionRepo) GetByCode(dbc dbctx.Context, code string) (*types.Transaction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Transaction
	err := t.WithContext(dbc.Ctx).Where("transaction_code = ?", code).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ClampListLimit is the page size List actually applies for a requested limit.
func ClampListLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}

func (r *transactionRepo) List(dbc dbctx.Context, f TransactionFilter, limit, offset int) ([]*types.Transaction, int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	limit = ClampListLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := applyFilter(t.WithContext(dbc.Ctx).Model(&types.Transaction{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []*types.Transaction
	if err := applyFilter(t.WithContext(dbc.Ctx), f).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *transactionRepo) SumByStatus(dbc dbctx.Context, f TransactionFilter) ([]StatusSum, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []StatusSum
	if err := applyFilter(t.WithContext(dbc.Ctx).Model(&types.Transaction{}), f).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Order("status ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *transactionRepo) ListAmountPoints(dbc dbctx.Context, f TransactionFilter) ([]AmountPoint, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Transaction
	if err := applyFilter(t.WithContext(dbc.Ctx), f).
		Select("status", "amount", "created_at").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]AmountPoint, 0, len(rows))
	for _, row := range rows {
		out = append(out, AmountPoint{Status: row.Status, Amount: row.Amount, CreatedAt: row.CreatedAt})
	}
	return out, nil
}

func applyFilter(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.LearnerID != uuid.Nil {
		q = q.Where("learner_id = ?", f.LearnerID)
	}
	if f.CourseID != uuid.Nil {
		q = q.Where("course_id = ?", f.CourseID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}
	return q
}
