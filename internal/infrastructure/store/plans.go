package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"meal-planner/internal/pkg/common"
)

const planColumns = `id, week_number, year, is_active, created_at`

// FindPlan 依週次取得計畫；不存在時返回 ErrPlanNotFound
func (s *Store) FindPlan(ctx context.Context, week, year int) (*WeeklyPlan, error) {
	var p WeeklyPlan
	err := s.db.GetContext(ctx, &p, s.rebind(`SELECT `+planColumns+` FROM weekly_plans WHERE week_number = ? AND year = ? LIMIT 1`), week, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrPlanNotFound.Wrap(err)
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}
	return &p, nil
}

// GetOrCreatePlan 取得週計畫，不存在時建立
func (s *Store) GetOrCreatePlan(ctx context.Context, week, year int) (*WeeklyPlan, error) {
	p, err := s.FindPlan(ctx, week, year)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrPlanNotFound) {
		return nil, err
	}

	// 並發建立時以唯一鍵擋下重複，衝突後再讀一次
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO weekly_plans (week_number, year, is_active, created_at)
		VALUES (?, ?, ?, ?) ON CONFLICT (week_number, year) DO NOTHING`),
		week, year, true, s.now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return s.FindPlan(ctx, week, year)
}

// AddPlannedMeal 新增一餐；返回帶有 ID 與食譜名稱的資料
func (s *Store) AddPlannedMeal(ctx context.Context, m *PlannedMeal) (*PlannedMeal, error) {
	var name string
	err := s.db.GetContext(ctx, &name, s.rebind(`SELECT name FROM recipes WHERE id = ?`), m.RecipeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrRecipeNotFound.Wrap(err)
		}
		return nil, fmt.Errorf("failed to look up recipe: %w", err)
	}

	err = s.db.QueryRowxContext(ctx, s.rebind(`
		INSERT INTO planned_meals (weekly_plan_id, recipe_id, day_of_week, meal_type, notes)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		m.WeeklyPlanID, m.RecipeID, m.DayOfWeek, m.MealType, m.Notes,
	).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add planned meal: %w", err)
	}
	m.RecipeName = name
	return m, nil
}

// ListPlannedMeals 依星期與餐別列出計畫中的餐點
func (s *Store) ListPlannedMeals(ctx context.Context, planID int64) ([]PlannedMeal, error) {
	meals := []PlannedMeal{}
	err := s.db.SelectContext(ctx, &meals, s.rebind(`
		SELECT pm.id, pm.weekly_plan_id, pm.recipe_id, r.name AS recipe_name, pm.day_of_week, pm.meal_type, pm.notes
		FROM planned_meals pm
		JOIN recipes r ON r.id = pm.recipe_id
		WHERE pm.weekly_plan_id = ?
		ORDER BY pm.day_of_week,
			CASE pm.meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END,
			pm.id`), planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list planned meals: %w", err)
	}
	return meals, nil
}

// DeletePlannedMeal 刪除一餐
func (s *Store) DeletePlannedMeal(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM planned_meals WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete planned meal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrMealNotFound
	}
	return nil
}

// PlannedIngredients 列出計畫中每道餐點的食材，同一道食譜排多次時會重複出現
func (s *Store) PlannedIngredients(ctx context.Context, planID int64) ([]PlannedIngredient, error) {
	rows := []PlannedIngredient{}
	err := s.db.SelectContext(ctx, &rows, s.rebind(`
		SELECT r.name AS recipe_name, i.ingredient_text, i.quantity, i.unit, i.ingredient_name, i.category
		FROM planned_meals pm
		JOIN recipes r ON r.id = pm.recipe_id
		JOIN ingredients i ON i.recipe_id = r.id
		WHERE pm.weekly_plan_id = ?
		ORDER BY i.category, i.ingredient_name, pm.id, i.sort_order`), planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list planned ingredients: %w", err)
	}
	return rows, nil
}

// GetOverlay 取得計畫的採購清單狀態
func (s *Store) GetOverlay(ctx context.Context, planID int64) ([]OverlayItem, error) {
	items := []OverlayItem{}
	err := s.db.SelectContext(ctx, &items, s.rebind(`
		SELECT id, weekly_plan_id, item_name, category, purchased, removed, custom
		FROM grocery_list_items WHERE weekly_plan_id = ? ORDER BY id`), planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get overlay: %w", err)
	}
	return items, nil
}

// ReplaceOverlay 以新的狀態取代計畫的所有採購清單列
func (s *Store) ReplaceOverlay(ctx context.Context, planID int64, items []OverlayItem) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM grocery_list_items WHERE weekly_plan_id = ?`), planID); err != nil {
			return fmt.Errorf("failed to clear overlay: %w", err)
		}
		insert := s.rebind(`
			INSERT INTO grocery_list_items (weekly_plan_id, item_name, category, purchased, removed, custom)
			VALUES (?, ?, ?, ?, ?, ?)`)
		for _, it := range items {
			if _, err := tx.ExecContext(ctx, insert, planID, it.ItemName, it.Category, it.Purchased, it.Removed, it.Custom); err != nil {
				return fmt.Errorf("failed to insert overlay item: %w", err)
			}
		}
		return nil
	})
}
