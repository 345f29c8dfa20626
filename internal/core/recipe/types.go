package recipe

import (
	"bytes"
	"encoding/json"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/scraper"
)

// CreateRecipeInput 建立食譜的請求
type CreateRecipeInput struct {
	Name              string            `json:"name"`
	SourceType        string            `json:"source_type"`
	SourceURL         *string           `json:"source_url"`
	SourceFileName    *string           `json:"source_file_name"`
	SourceCookbookRef *string           `json:"source_cookbook_ref"`
	Notes             *string           `json:"notes"`
	Ingredients       []IngredientInput `json:"ingredients"`
}

// UpdateRecipeInput 更新食譜的請求；未提供的欄位保持不變
type UpdateRecipeInput struct {
	Name        *string            `json:"name"`
	Notes       *string            `json:"notes"`
	Ingredients *[]IngredientInput `json:"ingredients"`
}

// IngredientInput 食材輸入：純文字、只有 ingredient_text 的物件，或已結構化的物件
type IngredientInput struct {
	IngredientText string   `json:"ingredient_text"`
	Quantity       *float64 `json:"quantity"`
	Unit           *string  `json:"unit"`
	IngredientName *string  `json:"ingredient_name"`
	Category       string   `json:"category"`
}

// UnmarshalJSON 同時接受字串與物件
func (in *IngredientInput) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*in = IngredientInput{IngredientText: text}
		return nil
	}

	type plain IngredientInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*in = IngredientInput(p)
	return nil
}

// structured 是否帶有已解析好的食材名稱
func (in IngredientInput) structured() bool {
	return in.IngredientName != nil && *in.IngredientName != ""
}

// ImportPreview 從網址擷取的食譜預覽，不會寫入資料庫
type ImportPreview struct {
	Recipe scraper.ScrapedRecipe         `json:"recipe"`
	Parsed []ingredient.ParsedIngredient `json:"parsed_ingredients"`
}
