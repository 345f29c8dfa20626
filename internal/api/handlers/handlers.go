package handlers

import (
	"strconv"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConfigKey gin.Context 中存放設定的鍵
const ConfigKey = "config"

// RequestID 取得本次請求的 ID
func RequestID(c *gin.Context) string {
	return requestid.Get(c)
}

// debugEnabled 開發模式時錯誤響應附上詳細信息
func debugEnabled(c *gin.Context) bool {
	v, ok := c.Get(ConfigKey)
	if !ok {
		return false
	}
	cfg, ok := v.(*config.Config)
	return ok && cfg.App.Debug
}

// Error 將錯誤轉為統一的 JSON 錯誤響應
func Error(c *gin.Context, err error) {
	status, resp := common.BuildErrorResponse(err, debugEnabled(c))

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("code", resp.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", RequestID(c)),
	}
	if status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求無法完成", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// BadRequest 請求格式錯誤
func BadRequest(c *gin.Context, err error) {
	Error(c, common.NewValidationError("Invalid request format: "+err.Error()))
}

// ParamID 解析路徑中的數字 ID
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Error(c, common.NewValidationError("invalid "+name))
		return 0, false
	}
	return id, true
}

// BindWeek 讀取 week 與 year 查詢參數；未提供時為 0
func BindWeek(c *gin.Context) (common.WeekRef, bool) {
	var ref common.WeekRef
	if err := c.ShouldBindQuery(&ref); err != nil {
		BadRequest(c, err)
		return ref, false
	}
	return ref, true
}
