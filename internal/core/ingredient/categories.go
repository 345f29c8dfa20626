package ingredient

import "strings"

// 分類名稱
const (
	CategoryProduce   = "produce"
	CategoryMeat      = "meat"
	CategorySeafood   = "seafood"
	CategoryDairy     = "dairy"
	CategoryPantry    = "pantry"
	CategoryCanned    = "canned"
	CategoryFrozen    = "frozen"
	CategorySpices    = "spices"
	CategoryBaking    = "baking"
	CategoryBeverages = "beverages"
	CategoryOther     = "other"

	// DefaultCategory 沒有任何關鍵字命中時的分類。
	// 沿用既有行為使用 pantry 而不是 other。
	DefaultCategory = CategoryPantry
)

// Categorize 依分類表順序比對關鍵字子字串，第一個命中者勝出
func Categorize(name string) string {
	normalized := strings.ToLower(name)
	for _, c := range tables.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(normalized, kw) {
				return c.Name
			}
		}
	}
	return DefaultCategory
}

// IsCategory 檢查分類是否屬於固定分類集合
func IsCategory(category string) bool {
	_, ok := tables.categorySet[category]
	return ok
}

// Categories 依表格順序返回所有分類名稱
func Categories() []string {
	names := make([]string, len(tables.categories))
	for i, c := range tables.categories {
		names[i] = c.Name
	}
	return names
}
