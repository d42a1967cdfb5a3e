package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From classifies a service error into an HTTP status, a stable code and a
// message safe to show to the caller. Internal and authenticity failures get
// generic messages; nothing from the request payload is echoed back.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, domainagg.ErrInvalidSignature):
		return New(http.StatusBadRequest, "invalid_signature", errors.New("invalid payment signature"))
	case errors.Is(err, domainagg.ErrMalformedCallback):
		return New(http.StatusBadRequest, "malformed_callback", errors.New("malformed payment callback"))
	case errors.Is(err, domainagg.ErrAlreadyEnrolled):
		return New(http.StatusConflict, "already_enrolled", errors.New("already enrolled in this course"))
	case errors.Is(err, domainagg.ErrPaymentRequired):
		return New(http.StatusPaymentRequired, "payment_required", errors.New("course requires payment"))
	case errors.Is(err, domainagg.ErrNotEnrolled):
		return New(http.StatusForbidden, "not_enrolled", errors.New("not enrolled in this course"))
	case errors.Is(err, domainagg.ErrCourseNotCompleted):
		return New(http.StatusConflict, "course_not_completed", errors.New("course has not been completed"))
	case errors.Is(err, domainagg.ErrLessonNotInCourse):
		return New(http.StatusBadRequest, "lesson_not_in_course", errors.New("lesson does not belong to this course"))
	case errors.Is(err, domainagg.ErrNotFound):
		return New(http.StatusNotFound, "not_found", errors.New("not found"))
	}
	var de *domainagg.Error
	if errors.As(err, &de) {
		msg := de.Message
		switch de.Code {
		case domainagg.CodeValidation:
			return New(http.StatusBadRequest, string(de.Code), errors.New(msg))
		case domainagg.CodeNotFound:
			return New(http.StatusNotFound, string(de.Code), errors.New("not found"))
		case domainagg.CodeConflict:
			return New(http.StatusConflict, string(de.Code), errors.New("conflicting update, retry"))
		case domainagg.CodePreconditionFailed, domainagg.CodeInvariantViolation:
			return New(http.StatusConflict, string(de.Code), errors.New(msg))
		case domainagg.CodeRetryable:
			return New(http.StatusServiceUnavailable, string(de.Code), errors.New("temporarily unavailable, retry"))
		}
	}
	return New(http.StatusInternalServerError, "internal", errors.New("internal error"))
}
