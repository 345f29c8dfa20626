package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"meal-planner/internal/core/queue"
	"meal-planner/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

func serve(h gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestReadinessCheck(t *testing.T) {
	cfg := &config.Config{}

	w := serve(NewHandler(cfg, pinger{}, nil).ReadinessCheck)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(NewHandler(cfg, pinger{err: errors.New("connection refused")}, nil).ReadinessCheck)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SERVICE_UNAVAILABLE", body["code"])
	assert.NotContains(t, body, "details")
}

func TestHealthCheckIncludesQueue(t *testing.T) {
	q := queue.NewManager(config.QueueConfig{Workers: 3, MaxSize: 5})
	cfg := &config.Config{App: config.AppConfig{Version: "1.2.3"}}

	w := serve(NewHandler(cfg, pinger{}, q).HealthCheck)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp.Version)
	require.NotNil(t, resp.Queue)
	assert.Equal(t, 3, resp.Queue.Workers)
	assert.Equal(t, 5, resp.Queue.MaxQueueSize)
}
