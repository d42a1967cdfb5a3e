package learning

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EnrollmentStatusInProgress = "in_progress"
	EnrollmentStatusCompleted  = "completed"
)

const (
	EnrollmentSourceFree    = "free"
	EnrollmentSourcePayment = "payment"
)

// Enrollment is the single access and progress record per (learner, course).
// Progress is always derived from CompletedLessonIDs; Version guards the
// read-modify-write of that set.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_learner_course,priority:1" json:"learner_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_learner_course,priority:2;index" json:"course_id"`
	Course    *Course   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`

	Status             string         `gorm:"not null;default:'in_progress';index" json:"status"`
	Progress           int            `gorm:"not null;default:0" json:"progress"`
	CompletedLessonIDs datatypes.JSON `gorm:"column:completed_lesson_ids" json:"completed_lesson_ids"`
	Source             string         `gorm:"not null;default:'free'" json:"source"`
	Version            int            `gorm:"not null;default:1" json:"-"`

	QuizResults []EnrollmentQuizResult `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"quiz_results,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollment" }

func (e Enrollment) IsCompleted() bool { return e.Status == EnrollmentStatusCompleted }

// CompletedLessons decodes the ordered completed-lesson set. Malformed or
// empty payloads decode to an empty set.
func (e Enrollment) CompletedLessons() []uuid.UUID {
	if len(e.CompletedLessonIDs) == 0 {
		return nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(e.CompletedLessonIDs, &ids); err != nil {
		return nil
	}
	return ids
}

// EncodeLessonSet renders ids in order, dropping duplicates after the first.
func EncodeLessonSet(ids []uuid.UUID) datatypes.JSON {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	b, _ := json.Marshal(out)
	return datatypes.JSON(b)
}

// ComputeProgress is round(100 * completed / total) clamped to [0,100].
// A course with no lessons has progress 0.
func ComputeProgress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(completed) / float64(total)))
	if p > 100 {
		return 100
	}
	return p
}

// EnrollmentQuizResult is the single live result per (enrollment, quiz);
// a resubmission overwrites it.
type EnrollmentQuizResult struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_quiz,priority:1" json:"enrollment_id"`
	QuizID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_quiz,priority:2" json:"quiz_id"`
	Score        int       `gorm:"not null" json:"score"`
	Total        int       `gorm:"not null" json:"total"`
	Passed       bool      `gorm:"not null" json:"passed"`
	SubmittedAt  time.Time `gorm:"not null" json:"submitted_at"`
}

func (EnrollmentQuizResult) TableName() string { return "enrollment_quiz_result" }

// Certificate is the public proof of completion. Code is a bearer credential
// for the unauthenticated verification page.
type Certificate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificate_learner_course,priority:1" json:"learner_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificate_learner_course,priority:2" json:"course_id"`
	Course    *Course   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Code      string    `gorm:"not null;uniqueIndex:idx_certificate_code" json:"code"`
	IssuedAt  time.Time `gorm:"not null" json:"issued_at"`
}

func (Certificate) TableName() string { return "certificate" }
