package domain

import (
	"github.com/yungbote/coursemarket-backend/internal/domain/billing"
	"github.com/yungbote/coursemarket-backend/internal/domain/learning"
	"github.com/yungbote/coursemarket-backend/internal/domain/user"
)

const (
	EnrollmentStatusInProgress = learning.EnrollmentStatusInProgress
	EnrollmentStatusCompleted  = learning.EnrollmentStatusCompleted

	EnrollmentSourceFree    = learning.EnrollmentSourceFree
	EnrollmentSourcePayment = learning.EnrollmentSourcePayment

	TransactionStatusPending  = billing.TransactionStatusPending
	TransactionStatusSuccess  = billing.TransactionStatusSuccess
	TransactionStatusFailed   = billing.TransactionStatusFailed
	TransactionStatusRefunded = billing.TransactionStatusRefunded

	PaymentMethodVNPay = billing.PaymentMethodVNPay

	RoleLearner = user.RoleLearner
	RoleAdmin   = user.RoleAdmin
)

type (
	User = user.User

	Course               = learning.Course
	Lesson               = learning.Lesson
	Quiz                 = learning.Quiz
	Enrollment           = learning.Enrollment
	EnrollmentQuizResult = learning.EnrollmentQuizResult
	Certificate          = learning.Certificate

	Transaction = billing.Transaction
)

var (
	ComputeProgress = learning.ComputeProgress
	EncodeLessonSet = learning.EncodeLessonSet

	ValidTransactionStatus = billing.ValidStatus
)

var (
	NewCertificateCode       = learning.NewCertificateCode
	NormalizeCertificateCode = learning.NormalizeCertificateCode
)
