package learning

import (
	"time"

	"github.com/google/uuid"
)

// Course is catalogue data owned by the content service. Price is in the
// smallest currency unit; zero means free.
type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Price       int64     `gorm:"not null;default:0;column:price" json:"price"`

	Lessons []Lesson `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

func (c Course) IsFree() bool { return c.Price <= 0 }

type Lesson struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index:idx_lesson_course_position,priority:1" json:"course_id"`
	Title    string    `gorm:"not null;column:title" json:"title"`
	Position int       `gorm:"not null;default:0;index:idx_lesson_course_position,priority:2" json:"position"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }

// Quiz belongs to a course and optionally to one of its lessons.
type Quiz struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
	Course   *Course    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	LessonID *uuid.UUID `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	Title    string     `gorm:"not null;column:title" json:"title"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Quiz) TableName() string { return "quiz" }
