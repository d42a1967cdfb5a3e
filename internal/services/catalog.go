package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

// CatalogService is the read-only view of courses and lessons this flow
// depends on. Content authoring lives elsewhere.
type CatalogService interface {
	GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	ListLessons(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error)
}

type catalogService struct {
	log     *logger.Logger
	courses repos.CourseRepo
	lessons repos.LessonRepo
}

func NewCatalogService(baseLog *logger.Logger, courses repos.CourseRepo, lessons repos.LessonRepo) CatalogService {
	return &catalogService{
		log:     baseLog.With("service", "CatalogService"),
		courses: courses,
		lessons: lessons,
	}
}

func (s *catalogService) GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	const op = "Catalog.GetCourse"
	c, err := s.courses.GetByID(dbctx.Context{Ctx: ctx}, courseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domainagg.Reject(domainagg.CodeNotFound, op, domainagg.ErrNotFound)
	}
	return c, nil
}

func (s *catalogService) ListLessons(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
	return s.lessons.ListByCourseID(dbctx.Context{Ctx: ctx}, courseID)
}
