package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/observability"
)

// Metrics records request count and latency per route template and access
// tier. Raw paths are never used as labels: public certificate URLs carry the
// bearer code.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(
			methodLabel(c.Request.Method),
			route,
			accessTier(route),
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// accessTier groups routes by who may call them.
func accessTier(route string) string {
	switch {
	case route == "unmatched":
		return "none"
	case strings.HasPrefix(route, "/api/admin/"):
		return "admin"
	case strings.HasPrefix(route, "/api/public/"), strings.HasPrefix(route, "/api/payments/"):
		return "public"
	case strings.HasPrefix(route, "/api/"):
		return "learner"
	}
	return "ops"
}

func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions:
		return m
	}
	return "OTHER"
}
