package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/platform/apierr"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type PaymentHandler struct {
	log         *logger.Logger
	payments    services.PaymentService
	redirectURL string
}

// NewPaymentHandler builds the checkout and gateway-return endpoints. When
// redirectURL is set the return endpoint sends the browser there instead of
// answering with JSON.
func NewPaymentHandler(log *logger.Logger, payments services.PaymentService, redirectURL string) *PaymentHandler {
	return &PaymentHandler{
		log:         log.With("handler", "PaymentHandler"),
		payments:    payments,
		redirectURL: redirectURL,
	}
}

type checkoutRequest struct {
	BankCode string `json:"bank_code"`
}

// POST /api/courses/:id/checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidBody)
			return
		}
	}
	out, err := h.payments.BuildPaymentURL(c.Request.Context(), services.CheckoutInput{
		LearnerID: userID,
		CourseID:  courseID,
		ClientIP:  c.ClientIP(),
		BankCode:  req.BankCode,
	})
	if err != nil {
		h.log.Debug("Checkout rejected", "error", err, "user_id", userID, "course_id", courseID)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/payments/vnpay/return
func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	res, err := h.payments.HandleReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		ae := apierr.From(err)
		if ae.Status >= http.StatusInternalServerError {
			h.log.Error("VNPayReturn failed", "error", err)
		} else {
			h.log.Warn("VNPayReturn rejected", "code", ae.Code)
		}
		if h.redirectURL != "" {
			h.redirect(c, url.Values{"status": {"error"}, "code": {ae.Code}})
			return
		}
		response.RespondErr(c, err)
		return
	}
	if h.redirectURL != "" {
		status := "failed"
		if res.Succeeded() {
			status = "success"
		}
		h.redirect(c, url.Values{
			"status":    {status},
			"course_id": {res.CourseID.String()},
			"code":      {res.ResponseCode},
		})
		return
	}
	response.RespondOK(c, res)
}

func (h *PaymentHandler) redirect(c *gin.Context, q url.Values) {
	target, err := url.Parse(h.redirectURL)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", errRedirect)
		return
	}
	merged := target.Query()
	for k, v := range q {
		merged[k] = v
	}
	target.RawQuery = merged.Encode()
	c.Redirect(http.StatusFound, target.String())
}
