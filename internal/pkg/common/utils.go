package common

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// HashKey 將任意字串轉為固定長度的 sha256 十六進位字串
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// CollapseSpace 合併連續空白並去除前後空白
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BuildErrorResponse 將錯誤轉為 HTTP 狀態碼與響應內容；debug 為真時附上詳細信息
func BuildErrorResponse(err error, debug bool) (int, ErrorResponse) {
	ce := AsCustomError(err)
	resp := ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	if IsValidationError(err) {
		resp.Message = err.Error()
	}
	if debug && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	return ce.Status, resp
}
