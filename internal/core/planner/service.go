package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meal-planner/internal/infrastructure/store"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 週計畫需要的資料存取
type Store interface {
	GetOrCreatePlan(ctx context.Context, week, year int) (*store.WeeklyPlan, error)
	AddPlannedMeal(ctx context.Context, m *store.PlannedMeal) (*store.PlannedMeal, error)
	ListPlannedMeals(ctx context.Context, planID int64) ([]store.PlannedMeal, error)
	DeletePlannedMeal(ctx context.Context, id int64) error
}

// WeekView 一週的計畫與餐點
type WeekView struct {
	Plan  *store.WeeklyPlan   `json:"plan"`
	Meals []store.PlannedMeal `json:"meals"`
}

// AddMealInput 新增餐點的請求；週次或年份為 0 時使用本週
type AddMealInput struct {
	WeekNumber int     `json:"week_number"`
	Year       int     `json:"year"`
	RecipeID   int64   `json:"recipe_id"`
	DayOfWeek  *int    `json:"day_of_week"`
	MealType   string  `json:"meal_type"`
	Notes      *string `json:"notes"`
}

// Service 週計畫服務
type Service struct {
	store Store
	now   func() time.Time
}

// NewService 創建週計畫服務
func NewService(st Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Week 取得（必要時建立）指定週的計畫與餐點
func (s *Service) Week(ctx context.Context, ref common.WeekRef) (*WeekView, error) {
	ref = ref.OrCurrent(s.now())
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.store.GetOrCreatePlan(ctx, ref.Week, ref.Year)
	if err != nil {
		return nil, err
	}
	meals, err := s.store.ListPlannedMeals(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	if meals == nil {
		meals = []store.PlannedMeal{}
	}
	return &WeekView{Plan: plan, Meals: meals}, nil
}

// AddMeal 驗證後把食譜加入指定週的某天某餐
func (s *Service) AddMeal(ctx context.Context, in AddMealInput) (*store.PlannedMeal, error) {
	if in.RecipeID <= 0 || in.DayOfWeek == nil || strings.TrimSpace(in.MealType) == "" {
		return nil, common.NewValidationError("Missing required fields: recipe_id, day_of_week, meal_type")
	}
	if *in.DayOfWeek < 0 || *in.DayOfWeek > 6 {
		return nil, common.NewValidationError(fmt.Sprintf("day_of_week must be between 0 and 6, got %d", *in.DayOfWeek))
	}
	mealType := strings.ToLower(strings.TrimSpace(in.MealType))
	if !common.Contains(common.MealTypes, mealType) {
		return nil, common.NewValidationError(fmt.Sprintf("invalid meal_type %q", in.MealType))
	}

	ref := common.WeekRef{Week: in.WeekNumber, Year: in.Year}.OrCurrent(s.now())
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.store.GetOrCreatePlan(ctx, ref.Week, ref.Year)
	if err != nil {
		return nil, err
	}
	meal, err := s.store.AddPlannedMeal(ctx, &store.PlannedMeal{
		WeeklyPlanID: plan.ID,
		RecipeID:     in.RecipeID,
		DayOfWeek:    *in.DayOfWeek,
		MealType:     mealType,
		Notes:        in.Notes,
	})
	if err != nil {
		return nil, err
	}

	common.LogInfo("餐點已加入週計畫",
		zap.String("week", ref.String()),
		zap.Int64("recipe_id", meal.RecipeID),
		zap.Int("day_of_week", meal.DayOfWeek),
		zap.String("meal_type", meal.MealType),
	)
	return meal, nil
}

// RemoveMeal 從週計畫移除一餐
func (s *Service) RemoveMeal(ctx context.Context, id int64) error {
	if err := s.store.DeletePlannedMeal(ctx, id); err != nil {
		return err
	}
	common.LogInfo("餐點已移除", zap.Int64("meal_id", id))
	return nil
}
