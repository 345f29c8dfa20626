package middleware

import (
	"crypto/subtle"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIKeyHeader 外部呼叫時帶入金鑰的標頭
const APIKeyHeader = "x-api-key"

// APIKey 只有在請求帶了金鑰、伺服器也設定了金鑰且兩者不同時才拒絕。
// 沒帶金鑰的請求（例如網頁前端）照常放行。
func APIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader(APIKeyHeader)
		if supplied == "" {
			supplied = c.Query("apiKey")
		}

		if supplied != "" && expected != "" &&
			subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) != 1 {
			common.LogWarn("API key 不符",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			abortWithError(c, common.ErrUnauthorized)
			return
		}

		c.Next()
	}
}
