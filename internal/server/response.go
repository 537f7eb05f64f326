package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/podscribe/internal/apperrors"
)

// RespondWithError inspects err: if it is an *apperrors.AppError the status
// and structured body are derived automatically; otherwise a generic 500 is
// sent.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

// RespondOK sends a 200 response with the given payload. Handlers return
// resource-shaped payloads directly; only errors are enveloped.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
