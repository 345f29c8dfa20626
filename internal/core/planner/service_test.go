package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/infrastructure/store"
	"meal-planner/internal/pkg/common"
)

type fakeStore struct {
	plans map[common.WeekRef]*store.WeeklyPlan
	meals []store.PlannedMeal
}

func (f *fakeStore) GetOrCreatePlan(ctx context.Context, week, year int) (*store.WeeklyPlan, error) {
	if f.plans == nil {
		f.plans = make(map[common.WeekRef]*store.WeeklyPlan)
	}
	ref := common.WeekRef{Week: week, Year: year}
	if p, ok := f.plans[ref]; ok {
		return p, nil
	}
	p := &store.WeeklyPlan{ID: int64(len(f.plans) + 1), WeekNumber: week, Year: year, IsActive: true}
	f.plans[ref] = p
	return p, nil
}

func (f *fakeStore) AddPlannedMeal(ctx context.Context, m *store.PlannedMeal) (*store.PlannedMeal, error) {
	m.ID = int64(len(f.meals) + 1)
	f.meals = append(f.meals, *m)
	return m, nil
}

func (f *fakeStore) ListPlannedMeals(ctx context.Context, planID int64) ([]store.PlannedMeal, error) {
	var out []store.PlannedMeal
	for _, m := range f.meals {
		if m.WeeklyPlanID == planID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) DeletePlannedMeal(ctx context.Context, id int64) error {
	for i, m := range f.meals {
		if m.ID == id {
			f.meals = append(f.meals[:i], f.meals[i+1:]...)
			return nil
		}
	}
	return common.ErrMealNotFound
}

func newTestService() (*Service, *fakeStore) {
	st := &fakeStore{}
	svc := NewService(st)
	// 2026-03-04 是 ISO 2026 年第 10 週
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC) }
	return svc, st
}

func intPtr(v int) *int { return &v }

func TestWeekDefaultsToCurrent(t *testing.T) {
	svc, _ := newTestService()

	view, err := svc.Week(context.Background(), common.WeekRef{})
	require.NoError(t, err)
	assert.Equal(t, 10, view.Plan.WeekNumber)
	assert.Equal(t, 2026, view.Plan.Year)
	assert.NotNil(t, view.Meals)
	assert.Empty(t, view.Meals)

	_, err = svc.Week(context.Background(), common.WeekRef{Week: 60, Year: 2026})
	assert.ErrorIs(t, err, common.ErrInvalidWeek)
}

func TestAddAndRemoveMeal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	meal, err := svc.AddMeal(ctx, AddMealInput{RecipeID: 3, DayOfWeek: intPtr(0), MealType: " Dinner "})
	require.NoError(t, err)
	assert.Equal(t, "dinner", meal.MealType)

	view, err := svc.Week(ctx, common.WeekRef{Week: 10, Year: 2026})
	require.NoError(t, err)
	require.Len(t, view.Meals, 1)
	assert.Equal(t, int64(3), view.Meals[0].RecipeID)

	require.NoError(t, svc.RemoveMeal(ctx, meal.ID))
	assert.ErrorIs(t, svc.RemoveMeal(ctx, meal.ID), common.ErrMealNotFound)
}

func TestAddMealValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   AddMealInput
	}{
		{"missing recipe", AddMealInput{DayOfWeek: intPtr(1), MealType: "lunch"}},
		{"missing day", AddMealInput{RecipeID: 1, MealType: "lunch"}},
		{"day out of range", AddMealInput{RecipeID: 1, DayOfWeek: intPtr(7), MealType: "lunch"}},
		{"negative day", AddMealInput{RecipeID: 1, DayOfWeek: intPtr(-1), MealType: "lunch"}},
		{"bad meal type", AddMealInput{RecipeID: 1, DayOfWeek: intPtr(2), MealType: "brunch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddMeal(ctx, tt.in)
			assert.True(t, common.IsValidationError(err), "got %v", err)
		})
	}

	_, err := svc.AddMeal(ctx, AddMealInput{WeekNumber: 54, Year: 2026, RecipeID: 1, DayOfWeek: intPtr(6), MealType: "breakfast"})
	assert.ErrorIs(t, err, common.ErrInvalidWeek)
}
