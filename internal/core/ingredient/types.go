package ingredient

// ParsedIngredient 單行食材文字的解析結果
type ParsedIngredient struct {
	Quantity *float64 `json:"quantity"`        // 數量，無法辨識時為 nil
	Unit     *string  `json:"unit"`            // 標準化後的單位
	Name     *string  `json:"ingredient_name"` // 清理後的名稱
	Category string   `json:"category"`        // 分類
}

// Contribution 某道食譜對某個食材的貢獻
type Contribution struct {
	Parsed     ParsedIngredient `json:"parsed"`
	RecipeName string           `json:"recipe_name"`
}

// QuantityBucket 同一單位的數量加總
type QuantityBucket struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// AggregatedIngredient 合併後的食材
type AggregatedIngredient struct {
	Name       string           `json:"name"`
	Quantities []QuantityBucket `json:"quantities"`
	Category   string           `json:"category"`
	UsedIn     []string         `json:"used_in"`
}

// GroupedResult 依分類分組的合併結果
type GroupedResult map[string][]AggregatedIngredient

// Count 返回所有分類的食材總數
func (g GroupedResult) Count() int {
	n := 0
	for _, items := range g {
		n += len(items)
	}
	return n
}
