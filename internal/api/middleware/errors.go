package middleware

import (
	"net/http"

	"chuckle-chow/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// abortWith 以統一格式中止請求
func abortWith(c *gin.Context, e *common.CustomError, details interface{}) {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, common.ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	})
}
