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

type CertificateRepo interface {
	// InsertIfAbsent inserts unless any unique key ((learner_id, course_id) or
	// code) collides. Callers tell the two apart by reading back the pair.
	InsertIfAbsent(dbc dbctx.Context, row *types.Certificate) (bool, error)

	GetByLearnerCourse(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*types.Certificate, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Certificate, error)
	ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.Certificate, error)
}

type certificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	return &certificateRepo{db: db, log: baseLog.With("repo", "CertificateRepo")}
}

func (r *certificateRepo) InsertIfAbsent(dbc dbctx.Context, row *types.Certificate) (bool, error) {
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
		Omit("Course").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *certificateRepo) GetByLearnerCourse(dbc dbctx.Context, learnerID, courseID uuid.UUID) (*types.Certificate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return firstCertificate(t.WithContext(dbc.Ctx).Where("learner_id = ? AND course_id = ?", learnerID, courseID))
}

func (r *certificateRepo) GetByCode(dbc dbctx.Context, code string) (*types.Certificate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return firstCertificate(t.WithContext(dbc.Ctx).Where("code = ?", code))
}

func (r *certificateRepo) ListByLearner(dbc dbctx.Context, learnerID uuid.UUID) ([]*types.Certificate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Certificate
	if err := t.WithContext(dbc.Ctx).
		Where("learner_id = ?", learnerID).
		Order("issued_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func firstCertificate(q *gorm.DB) (*types.Certificate, error) {
	var row types.Certificate
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
