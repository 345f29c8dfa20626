package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/pkg/common"
)

const (
	defaultDedupWindow = time.Second
	// 記錄數超過此值時清理過期的指紋
	dedupPruneThreshold = 1024
)

// Deduplicator 在時間窗內拒絕相同的 POST 請求
type Deduplicator struct {
	window   time.Duration
	mu       sync.Mutex
	requests map[string]time.Time
	now      func() time.Time
}

// NewDeduplicator 創建請求去重器；window <= 0 時使用 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Deduplication 請求去重中間件
func Deduplication(window time.Duration) gin.HandlerFunc {
	return NewDeduplicator(window).Handler()
}

// Handler 返回 gin 中間件
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				abortWithError(c, common.ErrPayloadTooLarge.Wrap(err))
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			if len(body) > 0 {
				fingerprint += ":" + common.HashKey(string(body))
			}
		}

		if !d.allow(fingerprint) {
			common.LogInfo("重複請求已拒絕",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			abortWithError(c, common.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

// allow 記錄指紋；同一指紋在時間窗內再次出現時返回 false
func (d *Deduplicator) allow(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return false
	}
	d.requests[fingerprint] = now

	if len(d.requests) > dedupPruneThreshold {
		for k, t := range d.requests {
			if now.Sub(t) > d.window {
				delete(d.requests, k)
			}
		}
	}
	return true
}
