package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"meal-planner/internal/pkg/common"
)

const recipeColumns = `id, name, source_type, source_url, source_file_name, source_cookbook_ref, notes, created_at, updated_at`

// CreateRecipe 在同一個交易中寫入食譜與食材；返回帶有 ID 的食譜
func (s *Store) CreateRecipe(ctx context.Context, r *Recipe) (*Recipe, error) {
	now := s.now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, s.rebind(`
			INSERT INTO recipes (name, source_type, source_url, source_file_name, source_cookbook_ref, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			r.Name, r.SourceType, r.SourceURL, r.SourceFileName, r.SourceCookbookRef, r.Notes, r.CreatedAt, r.UpdatedAt,
		).Scan(&r.ID)
		if err != nil {
			return fmt.Errorf("failed to insert recipe: %w", err)
		}

		return s.insertIngredients(ctx, tx, r.ID, r.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateRecipe 更新名稱與備註；Ingredients 不為 nil 時整批取代食材。
// 全部在同一個交易中完成，返回更新後的食譜。
func (s *Store) UpdateRecipe(ctx context.Context, id int64, u RecipeUpdate) (*Recipe, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{s.now().UTC()}
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *u.Notes)
	}
	args = append(args, id)

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(`UPDATE recipes SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return common.ErrRecipeNotFound
		}

		if u.Ingredients == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM ingredients WHERE recipe_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete ingredients: %w", err)
		}
		return s.insertIngredients(ctx, tx, id, u.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, id)
}

func (s *Store) insertIngredients(ctx context.Context, tx *sqlx.Tx, recipeID int64, ings []Ingredient) error {
	insert := s.rebind(`
		INSERT INTO ingredients (recipe_id, ingredient_text, quantity, unit, ingredient_name, category, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	for i := range ings {
		ing := &ings[i]
		ing.RecipeID = recipeID
		if err := tx.QueryRowxContext(ctx, insert,
			ing.RecipeID, ing.IngredientText, ing.Quantity, ing.Unit, ing.IngredientName, ing.Category, ing.SortOrder,
		).Scan(&ing.ID); err != nil {
			return fmt.Errorf("failed to insert ingredient %d: %w", i, err)
		}
	}
	return nil
}

// GetRecipe 取得食譜與依 sort_order 排序的食材
func (s *Store) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	var r Recipe
	err := s.db.GetContext(ctx, &r, s.rebind(`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrRecipeNotFound.Wrap(err)
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := s.db.SelectContext(ctx, &r.Ingredients, s.rebind(`
		SELECT id, recipe_id, ingredient_text, quantity, unit, ingredient_name, category, sort_order
		FROM ingredients WHERE recipe_id = ? ORDER BY sort_order, id`), id); err != nil {
		return nil, fmt.Errorf("failed to get ingredients: %w", err)
	}
	return &r, nil
}

// ListRecipes 依名稱排序列出食譜；search 不為空時以名稱做不分大小寫的模糊比對
func (s *Store) ListRecipes(ctx context.Context, search string) ([]Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes`
	var args []interface{}
	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY LOWER(name), id`

	recipes := []Recipe{}
	if err := s.db.SelectContext(ctx, &recipes, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// DeleteRecipe 刪除食譜及其食材與排餐
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM planned_meals WHERE recipe_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete planned meals: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM ingredients WHERE recipe_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete ingredients: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM recipes WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return common.ErrRecipeNotFound
		}
		return nil
	})
}

// ListIngredientTexts 列出所有食材的 ID 與原始文字
func (s *Store) ListIngredientTexts(ctx context.Context) ([]Ingredient, error) {
	rows := []Ingredient{}
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, recipe_id, ingredient_text, quantity, unit, ingredient_name, category, sort_order
		FROM ingredients ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return rows, nil
}

// UpdateIngredientParse 寫回單一食材的結構化欄位
func (s *Store) UpdateIngredientParse(ctx context.Context, id int64, p IngredientParse) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE ingredients SET quantity = ?, unit = ?, ingredient_name = ?, category = ?
		WHERE id = ?`),
		p.Quantity, p.Unit, p.IngredientName, p.Category, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update ingredient %d: %w", id, err)
	}
	return nil
}
