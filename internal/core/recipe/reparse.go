package recipe

import (
	"context"
	"fmt"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/infrastructure/store"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const reparseLogEvery = 50

// ReparseResult 重新解析的統計
type ReparseResult struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Reparse 以目前的解析器重新解析所有已儲存的食材文字並寫回結構化欄位。
// 工作交給隊列的 worker 執行，隊列必須已經 Start。
func (s *Service) Reparse(ctx context.Context) (*ReparseResult, error) {
	rows, err := s.store.ListIngredientTexts(ctx)
	if err != nil {
		return nil, err
	}

	result := &ReparseResult{Total: len(rows)}
	common.LogInfo("開始重新解析食材", zap.Int("total", len(rows)))

	var (
		pending  []<-chan queue.Result
		firstErr error
	)
	collect := func() {
		res := <-pending[0]
		pending = pending[1:]
		if res.Error != nil {
			result.Failed++
			if firstErr == nil {
				firstErr = res.Error
			}
			return
		}
		result.Updated++
		if result.Updated%reparseLogEvery == 0 {
			common.LogInfo("重新解析進度",
				zap.Int("updated", result.Updated),
				zap.Int("total", result.Total),
			)
		}
	}
	drain := func() {
		for len(pending) > 0 {
			collect()
		}
	}

	for _, row := range rows {
		job := s.reparseJob(row)
		for {
			ch, err := s.queue.Submit(ctx, job)
			if err == nil {
				pending = append(pending, ch)
				break
			}
			// 隊列滿時先等最早的工作完成再重試
			if queue.IsFull(err) && len(pending) > 0 {
				collect()
				continue
			}
			drain()
			return result, err
		}
	}
	drain()

	common.LogInfo("重新解析完成",
		zap.Int("total", result.Total),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	if firstErr != nil {
		return result, fmt.Errorf("%d ingredient(s) failed to reparse: %w", result.Failed, firstErr)
	}
	return result, nil
}

func (s *Service) reparseJob(row store.Ingredient) queue.Job {
	return func(ctx context.Context) (interface{}, error) {
		p := ingredient.Parse(row.IngredientText)
		err := s.store.UpdateIngredientParse(ctx, row.ID, store.IngredientParse{
			Quantity:       p.Quantity,
			Unit:           p.Unit,
			IngredientName: p.Name,
			Category:       p.Category,
		})
		if err != nil {
			return nil, fmt.Errorf("ingredient %d: %w", row.ID, err)
		}
		return nil, nil
	}
}
