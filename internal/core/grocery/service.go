package grocery

import (
	"context"
	"errors"
	"time"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/infrastructure/store"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EmptyPlanMessage 計畫中沒有任何食材時的提示
const EmptyPlanMessage = "No ingredients found. Add some meals to your weekly plan first."

// Store 採購清單需要的資料存取
type Store interface {
	FindPlan(ctx context.Context, week, year int) (*store.WeeklyPlan, error)
	PlannedIngredients(ctx context.Context, planID int64) ([]store.PlannedIngredient, error)
	GetOverlay(ctx context.Context, planID int64) ([]store.OverlayItem, error)
	ReplaceOverlay(ctx context.Context, planID int64, items []store.OverlayItem) error
}

// List 一週的採購清單
type List struct {
	Week        int                      `json:"week"`
	Year        int                      `json:"year"`
	GroceryList string                   `json:"grocery_list"`
	Aggregated  ingredient.GroupedResult `json:"aggregated"`
	Message     string                   `json:"message,omitempty"`
}

// Service 採購清單服務
type Service struct {
	store     Store
	shardSize int
	now       func() time.Time
}

// NewService 創建採購清單服務；shardSize <= 0 時不分片
func NewService(st Store, shardSize int) *Service {
	return &Service{store: st, shardSize: shardSize, now: time.Now}
}

// Build 彙總指定週所有計畫餐點的食材
func (s *Service) Build(ctx context.Context, ref common.WeekRef) (*List, error) {
	ref = ref.OrCurrent(s.now())
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.store.FindPlan(ctx, ref.Week, ref.Year)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.PlannedIngredients(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	list := &List{Week: ref.Week, Year: ref.Year}
	if len(rows) == 0 {
		list.Aggregated = ingredient.GroupedResult{}
		list.Message = EmptyPlanMessage
		return list, nil
	}

	tally, err := s.aggregate(ctx, rows)
	if err != nil {
		return nil, err
	}
	list.Aggregated = tally.Result()
	list.GroceryList = ingredient.Format(list.Aggregated)

	common.LogInfo("採購清單已產生",
		zap.String("week", ref.String()),
		zap.Int("rows", len(rows)),
		zap.Int("items", list.Aggregated.Count()),
	)
	return list, nil
}

// aggregate 資料列超過 shardSize 時分片平行彙總後再合併
func (s *Service) aggregate(ctx context.Context, rows []store.PlannedIngredient) (*ingredient.Tally, error) {
	if s.shardSize <= 0 || len(rows) <= s.shardSize {
		return tallyRows(rows), nil
	}

	shards := (len(rows) + s.shardSize - 1) / s.shardSize
	tallies := make([]*ingredient.Tally, shards)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		i := i
		start := i * s.shardSize
		end := start + s.shardSize
		if end > len(rows) {
			end = len(rows)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tallies[i] = tallyRows(rows[start:end])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 依分片順序合併，名稱與分類維持最先出現者
	total := ingredient.NewTally()
	for _, t := range tallies {
		total.Merge(t)
	}
	common.LogDebug("分片彙總完成", zap.Int("shards", shards), zap.Int("rows", len(rows)))
	return total, nil
}

func tallyRows(rows []store.PlannedIngredient) *ingredient.Tally {
	t := ingredient.NewTally()
	for _, row := range rows {
		t.Add(ingredient.Contribution{
			Parsed: ingredient.ParsedIngredient{
				Quantity: row.Quantity,
				Unit:     row.Unit,
				Name:     row.IngredientName,
				Category: row.Category,
			},
			RecipeName: row.RecipeName,
		})
	}
	return t
}

// findPlanOrNil 找不到計畫時返回 nil 而不是錯誤
func (s *Service) findPlanOrNil(ctx context.Context, ref common.WeekRef) (*store.WeeklyPlan, error) {
	plan, err := s.store.FindPlan(ctx, ref.Week, ref.Year)
	if errors.Is(err, common.ErrPlanNotFound) {
		return nil, nil
	}
	return plan, err
}
