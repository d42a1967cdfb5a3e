package learning

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type EnrollmentRepo interface {
	// InsertIfAbsent inserts unless (learner_id, course_id) already exists.
	// It reports whether this call created the row.
	InsertIfAbsent(dbc dbctx.Context, row *types.Enrollment) (bool, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error)
	GetByLearnerCourse(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*types.Enrollment, error)
	LockByLearnerCourse(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*types.Enrollment, error)
	ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.Enrollment, error)
	CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) InsertIfAbsent(dbc dbctx.Context, row *types.Enrollment) (bool, error) {
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
		Omit("Course", "QuizResults").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *enrollmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Enrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return firstEnrollment(t.WithContext(dbc.Ctx).Where("id = ?", id))
}

// GetByLearnerCourse returns (nil, nil) when no enrollment exists.
func (r *enrollmentRepo) GetByLearnerCourse(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*types.Enrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return firstEnrollment(t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID))
}

// LockByLearnerCourse takes a row lock for the rest of the transaction.
// Dialects without row locks (sqlite) drop the clause.
func (r *enrollmentRepo) LockByLearnerCourse(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*types.Enrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return firstEnrollment(t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID))
}

func (r *enrollmentRepo) ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.Enrollment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Enrollment
	if err := t.WithContext(dbc.Ctx).
		Where("learner_id = ?", learnerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).Model(&types.Enrollment{}).Where("course_id = ?", courseID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func firstEnrollment(q *gorm.DB) (*types.Enrollment, error) {
	var row types.Enrollment
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
