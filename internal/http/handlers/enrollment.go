package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type EnrollmentHandler struct {
	log        *logger.Logger
	enrollment services.EnrollmentService
}

func NewEnrollmentHandler(log *logger.Logger, enrollment services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:        log.With("handler", "EnrollmentHandler"),
		enrollment: enrollment,
	}
}

// POST /api/courses/:id/enroll
func (h *EnrollmentHandler) Join(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	enr, err := h.enrollment.Join(c.Request.Context(), userID, courseID)
	if err != nil {
		h.log.Debug("Join rejected", "error", err, "user_id", userID, "course_id", courseID)
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"enrollment": enr})
}

// GET /api/enrollments
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	rows, err := h.enrollment.ListForLearner(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("ListMine failed", "error", err, "user_id", userID)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollments": rows})
}

// GET /api/courses/:id/enrollment
func (h *EnrollmentHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.enrollment.Get(c.Request.Context(), userID, courseID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/courses/:id/lessons/:lessonId/complete
func (h *EnrollmentHandler) CompleteLesson(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "lessonId")
	if !ok {
		return
	}
	res, err := h.enrollment.CompleteLesson(c.Request.Context(), userID, courseID, lessonID)
	if err != nil {
		h.log.Debug("CompleteLesson rejected", "error", err, "user_id", userID, "lesson_id", lessonID)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"progress":       res.Progress,
		"status":         res.Status,
		"just_completed": res.JustCompleted,
	})
}

type quizResultRequest struct {
	CourseID *uuid.UUID `json:"course_id"`
	Score    *int       `json:"score"`
	Total    *int       `json:"total"`
	Passed   bool       `json:"passed"`
}

// POST /api/quizzes/:id/result
func (h *EnrollmentHandler) RecordQuizResult(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req quizResultRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Score == nil || req.Total == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidBody)
		return
	}
	in := domainagg.RecordQuizResultInput{
		LearnerID:   userID,
		QuizID:      quizID,
		Score:       *req.Score,
		Total:       *req.Total,
		Passed:      req.Passed,
		SubmittedAt: time.Now().UTC(),
	}
	if req.CourseID != nil {
		in.CourseID = *req.CourseID
	}
	res, err := h.enrollment.RecordQuizResult(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": res.Result, "replaced": res.Replaced})
}
