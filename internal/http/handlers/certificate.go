package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type CertificateHandler struct {
	log          *logger.Logger
	certificates services.CertificateService
}

func NewCertificateHandler(log *logger.Logger, certificates services.CertificateService) *CertificateHandler {
	return &CertificateHandler{
		log:          log.With("handler", "CertificateHandler"),
		certificates: certificates,
	}
}

// POST /api/courses/:id/certificate
func (h *CertificateHandler) Claim(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	cert, created, err := h.certificates.Claim(c.Request.Context(), userID, courseID)
	if err != nil {
		h.log.Debug("Claim rejected", "error", err, "user_id", userID, "course_id", courseID)
		response.RespondErr(c, err)
		return
	}
	if created {
		response.RespondCreated(c, gin.H{"certificate": cert})
		return
	}
	response.RespondOK(c, gin.H{"certificate": cert})
}

// GET /api/certificates
func (h *CertificateHandler) ListMine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	certs, err := h.certificates.ListForLearner(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("ListMine failed", "error", err, "user_id", userID)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"certificates": certs})
}

// GET /api/public/certificates/:code
func (h *CertificateHandler) GetPublic(c *gin.Context) {
	cert, err := h.certificates.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"certificate": cert})
}

// GET /api/public/certificates/:code/badge.png
func (h *CertificateHandler) Badge(c *gin.Context) {
	png, err := h.certificates.RenderBadge(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
