package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Job 佇列中執行的工作
type Job func(ctx context.Context) (interface{}, error)

// Result 處理結果
type Result struct {
	Value interface{}
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
	Running        bool  `json:"running"`
}

type request struct {
	ctx    context.Context
	job    Job
	result chan Result
}

// Manager 有界工作隊列與固定數量的 worker
type Manager struct {
	config    config.QueueConfig
	queue     chan *request
	processed int64
	failed    int64
	mu        sync.RWMutex
	closed    bool
	started   bool
	wg        sync.WaitGroup
}

// NewManager 創建新的隊列管理器
func NewManager(cfg config.QueueConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1
	}
	return &Manager{
		config: cfg,
		queue:  make(chan *request, cfg.MaxSize),
	}
}

// Start 啟動 worker；重複呼叫無效
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.closed {
		return
	}
	m.started = true

	for i := 0; i < m.config.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	common.LogInfo("工作隊列已啟動",
		zap.Int("workers", m.config.Workers),
		zap.Int("max_queue_size", m.config.MaxSize),
	)
}

// Submit 將工作加入隊列；隊列已滿時立即返回 ErrQueueFull
func (m *Manager) Submit(ctx context.Context, job Job) (<-chan Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, common.ErrQueueClosed
	}

	req := &request{ctx: ctx, job: job, result: make(chan Result, 1)}
	select {
	case m.queue <- req:
		common.LogDebug("Job enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
		return req.result, nil
	default:
		return nil, common.ErrQueueFull
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()
	for req := range m.queue {
		res := m.run(req)
		if res.Error != nil {
			atomic.AddInt64(&m.failed, 1)
		}
		atomic.AddInt64(&m.processed, 1)
		req.result <- res
	}
	common.LogDebug("worker 已結束", zap.Int("worker", id))
}

func (m *Manager) run(req *request) (res Result) {
	if err := req.ctx.Err(); err != nil {
		return Result{Error: err}
	}

	ctx := req.ctx
	if m.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.JobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			common.LogError("工作執行時發生 panic", zap.Any("panic", r))
			res = Result{Error: fmt.Errorf("job panicked: %v", r)}
		}
	}()

	value, err := req.job(ctx)
	return Result{Value: value, Error: err}
}

// Status 獲取隊列狀態
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		FailedCount:    atomic.LoadInt64(&m.failed),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
		Running:        m.started && !m.closed,
	}
}

// Close 停止接收新工作，等待已排入的工作完成
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	started := m.started
	m.mu.Unlock()

	if !started {
		// 沒有 worker 時，排隊中的工作直接以關閉錯誤結束
		for req := range m.queue {
			req.result <- Result{Error: common.ErrQueueClosed}
		}
		return
	}
	m.wg.Wait()
	common.LogInfo("工作隊列已關閉", zap.Int64("processed", atomic.LoadInt64(&m.processed)))
}

// IsFull 判斷錯誤是否為隊列已滿
func IsFull(err error) bool {
	return errors.Is(err, common.ErrQueueFull)
}
