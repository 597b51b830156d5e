package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bids-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小（头像上传也走这里）
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			response.AbortErr(c, http.StatusBadRequest, "request body too large")
		}
	}
}
