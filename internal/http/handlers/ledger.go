package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type LedgerHandler struct {
	log    *logger.Logger
	ledger services.LedgerQueryService
}

func NewLedgerHandler(log *logger.Logger, ledger services.LedgerQueryService) *LedgerHandler {
	return &LedgerHandler{
		log:    log.With("handler", "LedgerHandler"),
		ledger: ledger,
	}
}

// GET /api/admin/transactions
func (h *LedgerHandler) List(c *gin.Context) {
	f, ok := transactionFilter(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset")
	if !ok {
		return
	}
	page, err := h.ledger.List(c.Request.Context(), f, limit, offset)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/admin/transactions/summary
func (h *LedgerHandler) Summary(c *gin.Context) {
	f, ok := transactionFilter(c)
	if !ok {
		return
	}
	sum, err := h.ledger.Summary(c.Request.Context(), f, strings.TrimSpace(c.Query("bucket")))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, sum)
}

func transactionFilter(c *gin.Context) (repos.TransactionFilter, bool) {
	f := repos.TransactionFilter{Status: strings.TrimSpace(c.Query("status"))}
	var ok bool
	if f.LearnerID, ok = uuidQuery(c, "learner_id"); !ok {
		return f, false
	}
	if f.CourseID, ok = uuidQuery(c, "course_id"); !ok {
		return f, false
	}
	if f.From, ok = timeQuery(c, "from"); !ok {
		return f, false
	}
	if f.To, ok = timeQuery(c, "to"); !ok {
		return f, false
	}
	return f, true
}

func uuidQuery(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, errInvalidQuery)
		return uuid.Nil, false
	}
	return id, true
}

// timeQuery accepts RFC 3339 timestamps or bare dates (midnight UTC).
func timeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	response.RespondError(c, http.StatusBadRequest, "invalid_"+name, errInvalidQuery)
	return time.Time{}, false
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, errInvalidQuery)
		return 0, false
	}
	return n, true
}
