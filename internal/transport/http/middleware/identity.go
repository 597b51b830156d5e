package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bids-api/internal/core/auth"
	"bids-api/internal/transport/http/response"
)

const KeyUserID = "userId"

// Identity 从 Bearer access token 里取 userId，只解码不验签：
// 旧 API 的既有行为，signout/refresh 靠服务端存的 refresh token 兜底授权。
// 缺头在任何 DB 访问之前就拦下。
func Identity(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			response.AbortErr(c, http.StatusUnauthorized, "Access token not found!")
			return
		}
		claims, err := j.Decode(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			response.AbortErr(c, http.StatusUnauthorized, "Access token is not valid!")
			return
		}
		c.Set(KeyUserID, claims.UserID)
		c.Next()
	}
}
