package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/x", ok)
	r.POST("/x", ok)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPIKey(t *testing.T) {
	r := newEngine(APIKey("secret"))

	tests := []struct {
		name   string
		target string
		header map[string]string
		want   int
	}{
		{"no key supplied", "/x", nil, http.StatusOK},
		{"matching header", "/x", map[string]string{"X-Api-Key": "secret"}, http.StatusOK},
		{"matching query", "/x?apiKey=secret", nil, http.StatusOK},
		{"wrong header", "/x", map[string]string{"X-Api-Key": "nope"}, http.StatusUnauthorized},
		{"wrong query", "/x?apiKey=nope", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.target, "", tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	// 伺服器沒設定金鑰時一律放行
	open := newEngine(APIKey(""))
	assert.Equal(t, http.StatusOK, do(open, http.MethodGet, "/x?apiKey=anything", "", nil).Code)
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	r := newEngine(d.Handler())

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/x", `{"a":1}`, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/x", `{"a":1}`, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/x", `{"a":2}`, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", "", nil).Code)

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/x", `{"a":1}`, nil).Code)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	// 30 秒補回一個令牌
	now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimit(1, time.Minute))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", "", nil).Code)
	w := do(r, http.MethodGet, "/x", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/x", "small", nil).Code)
	w := do(r, http.MethodPost, "/x", "this body is too large", nil)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(), Logger())

	w := do(r, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestLoggerRecordsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	common.SetLogger(zap.New(core))
	t.Cleanup(func() { common.SetLogger(nil) })

	r := newEngine(requestid.New(), Logger())
	do(r, http.MethodGet, "/x?week=10", "", map[string]string{"X-Request-ID": "req-1"})
	do(r, http.MethodGet, "/missing", "", nil)

	done := logs.FilterMessage("請求完成").All()
	require.Len(t, done, 1)
	fields := done[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "week=10", fields["query"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])

	assert.Equal(t, 1, logs.FilterMessage("用戶端錯誤").Len())
}
