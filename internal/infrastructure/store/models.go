package store

import "time"

// Recipe 食譜資料列
type Recipe struct {
	ID                int64     `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	SourceType        string    `db:"source_type" json:"source_type"`
	SourceURL         *string   `db:"source_url" json:"source_url"`
	SourceFileName    *string   `db:"source_file_name" json:"source_file_name"`
	SourceCookbookRef *string   `db:"source_cookbook_ref" json:"source_cookbook_ref"`
	Notes             *string   `db:"notes" json:"notes"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`

	Ingredients []Ingredient `db:"-" json:"ingredients,omitempty"`
}

// Ingredient 食材資料列
type Ingredient struct {
	ID             int64    `db:"id" json:"id"`
	RecipeID       int64    `db:"recipe_id" json:"recipe_id"`
	IngredientText string   `db:"ingredient_text" json:"ingredient_text"`
	Quantity       *float64 `db:"quantity" json:"quantity"`
	Unit           *string  `db:"unit" json:"unit"`
	IngredientName *string  `db:"ingredient_name" json:"ingredient_name"`
	Category       string   `db:"category" json:"category"`
	SortOrder      int      `db:"sort_order" json:"sort_order"`
}

// WeeklyPlan 週計畫資料列
type WeeklyPlan struct {
	ID         int64     `db:"id" json:"id"`
	WeekNumber int       `db:"week_number" json:"week_number"`
	Year       int       `db:"year" json:"year"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PlannedMeal 週計畫中的一餐，附帶食譜名稱
type PlannedMeal struct {
	ID           int64   `db:"id" json:"id"`
	WeeklyPlanID int64   `db:"weekly_plan_id" json:"weekly_plan_id"`
	RecipeID     int64   `db:"recipe_id" json:"recipe_id"`
	RecipeName   string  `db:"recipe_name" json:"recipe_name"`
	DayOfWeek    int     `db:"day_of_week" json:"day_of_week"`
	MealType     string  `db:"meal_type" json:"meal_type"`
	Notes        *string `db:"notes" json:"notes"`
}

// PlannedIngredient 計畫中所有食譜的食材列
type PlannedIngredient struct {
	RecipeName     string   `db:"recipe_name"`
	IngredientText string   `db:"ingredient_text"`
	Quantity       *float64 `db:"quantity"`
	Unit           *string  `db:"unit"`
	IngredientName *string  `db:"ingredient_name"`
	Category       string   `db:"category"`
}

// OverlayItem 採購清單上的使用者狀態（已購、移除、自訂）
type OverlayItem struct {
	ID           int64  `db:"id" json:"-"`
	WeeklyPlanID int64  `db:"weekly_plan_id" json:"-"`
	ItemName     string `db:"item_name" json:"item_name"`
	Category     string `db:"category" json:"category"`
	Purchased    bool   `db:"purchased" json:"purchased"`
	Removed      bool   `db:"removed" json:"removed"`
	Custom       bool   `db:"custom" json:"custom"`
}

// IngredientParse 重新解析後要寫回的欄位
type IngredientParse struct {
	Quantity       *float64
	Unit           *string
	IngredientName *string
	Category       string
}

// RecipeUpdate 食譜的部分更新；nil 欄位保持不變，Ingredients 為空切片時清空食材
type RecipeUpdate struct {
	Name        *string
	Notes       *string
	Ingredients []Ingredient
}
