package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type EnrollmentQuizResultRepo interface {
	// Upsert replaces the live result for (enrollment_id, quiz_id).
	Upsert(dbc dbctx.Context, row *types.EnrollmentQuizResult) error
	GetByEnrollmentQuiz(dbc dbctx.Context, enrollmentID, quizID uuid.UUID) (*types.EnrollmentQuizResult, error)
	ListByEnrollmentIDs(dbc dbctx.Context, enrollmentIDs []uuid.UUID) ([]*types.EnrollmentQuizResult, error)
}

type enrollmentQuizResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentQuizResultRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentQuizResultRepo {
	return &enrollmentQuizResultRepo{db: db, log: baseLog.With("repo", "EnrollmentQuizResultRepo")}
}

func (r *enrollmentQuizResultRepo) Upsert(dbc dbctx.Context, row *types.EnrollmentQuizResult) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "quiz_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "total", "passed", "submitted_at"}),
		}).
		Create(row).Error
}

func (r *enrollmentQuizResultRepo) GetByEnrollmentQuiz(dbc dbctx.Context, enrollmentID, quizID uuid.UUID) (*types.EnrollmentQuizResult, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.EnrollmentQuizResult
	if err := t.WithContext(dbc.Ctx).
		Where("enrollment_id = ? AND quiz_id = ?", enrollmentID, quizID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *enrollmentQuizResultRepo) ListByEnrollmentIDs(dbc dbctx.Context, enrollmentIDs []uuid.UUID) ([]*types.EnrollmentQuizResult, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.EnrollmentQuizResult
	if len(enrollmentIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("enrollment_id IN ?", enrollmentIDs).
		Order("submitted_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
