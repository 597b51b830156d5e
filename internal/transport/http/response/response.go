// Package response 统一响应：错误一律 {"message": ...} + 对应状态码
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bids-api/internal/apperr"
)

func Err(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// FromError 业务错误映射状态码；其余错误按旧 API 的口径回 400 并透出原文
func FromError(c *gin.Context, err error) {
	var ae *apperr.E
	if errors.As(err, &ae) {
		Err(c, ae.Status, ae.Error())
		return
	}
	Err(c, http.StatusBadRequest, err.Error())
}

func AbortErr(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}
