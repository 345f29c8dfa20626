package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/store"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// 以目前的解析規則重新解析所有已儲存的食材文字
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer st.Close()

	q := queue.NewManager(cfg.Queue)
	q.Start()
	defer q.Close()

	result, err := recipe.NewService(st, q, nil, nil).Reparse(ctx)
	if err != nil {
		common.LogError("重新解析失敗", zap.Error(err))
		os.Exit(1)
	}

	common.LogInfo("重新解析結束",
		zap.Int("total", result.Total),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
}
