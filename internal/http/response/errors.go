package response

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/platform/apierr"
)

// RespondErr classifies err and writes the matching envelope. Internal
// details never reach the client.
func RespondErr(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		return
	}
	_ = c.Error(err)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
