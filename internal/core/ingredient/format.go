package ingredient

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// CategoryOrder 清單輸出時的分類順序
var CategoryOrder = []string{
	CategoryProduce,
	CategoryMeat,
	CategorySeafood,
	CategoryDairy,
	CategoryPantry,
	CategoryCanned,
	CategoryFrozen,
	CategorySpices,
	CategoryBaking,
	CategoryBeverages,
	CategoryOther,
}

var categoryDisplayNames = map[string]string{
	CategoryProduce:   "Produce",
	CategoryMeat:      "Meat & Poultry",
	CategorySeafood:   "Seafood",
	CategoryDairy:     "Dairy & Eggs",
	CategoryPantry:    "Pantry",
	CategoryCanned:    "Canned Goods",
	CategoryFrozen:    "Frozen",
	CategorySpices:    "Spices & Seasonings",
	CategoryBaking:    "Baking",
	CategoryBeverages: "Beverages",
	CategoryOther:     "Other",
}

// 依序比對，第一個在容差內的分數勝出
var commonFractions = []struct {
	value float64
	glyph string
}{
	{0.25, "¼"},
	{0.33, "⅓"},
	{0.5, "½"},
	{0.66, "⅔"},
	{0.75, "¾"},
}

const fractionTolerance = 0.05

// DisplayName 返回分類的顯示名稱；未知分類原樣返回
func DisplayName(category string) string {
	if name, ok := categoryDisplayNames[category]; ok {
		return name
	}
	return category
}

// OrderedCategories 依輸出順序返回結果中有食材的分類。
// 固定順序以外的分類依字母排在最後。
func OrderedCategories(result GroupedResult) []string {
	known := make(map[string]struct{}, len(CategoryOrder))
	var ordered []string
	for _, c := range CategoryOrder {
		known[c] = struct{}{}
		if len(result[c]) > 0 {
			ordered = append(ordered, c)
		}
	}

	var extra []string
	for c, items := range result {
		if _, ok := known[c]; !ok && len(items) > 0 {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(ordered, extra...)
}

// Format 將分組結果輸出為可閱讀的採購清單
func Format(result GroupedResult) string {
	var b strings.Builder
	b.WriteString("# Grocery List\n\n")

	for _, category := range OrderedCategories(result) {
		fmt.Fprintf(&b, "## %s\n\n", DisplayName(category))
		for _, item := range result[category] {
			b.WriteString("- ")
			if q := FormatQuantities(item.Quantities); q != "" {
				b.WriteString(q)
				b.WriteByte(' ')
			}
			b.WriteString(item.Name)
			b.WriteString(usedInSuffix(item.UsedIn))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatQuantities 以逗號串接各數量桶，例如 "2 cup, 1 tbsp"
func FormatQuantities(buckets []QuantityBucket) string {
	parts := make([]string, 0, len(buckets))
	for _, q := range buckets {
		amount := FormatAmount(q.Amount)
		if q.Unit == "" || q.Unit == ItemUnit {
			parts = append(parts, amount)
			continue
		}
		parts = append(parts, amount+" "+q.Unit)
	}
	return strings.Join(parts, ", ")
}

// FormatAmount 四捨五入到小數兩位，接近常見分數時以分數字元表示
func FormatAmount(amount float64) string {
	rounded := math.Round(amount*100) / 100
	whole := math.Floor(rounded)
	decimal := rounded - whole

	for _, f := range commonFractions {
		if math.Abs(decimal-f.value) < fractionTolerance {
			if whole > 0 {
				return strconv.FormatFloat(whole, 'f', -1, 64) + " " + f.glyph
			}
			return f.glyph
		}
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func usedInSuffix(recipes []string) string {
	switch len(recipes) {
	case 0:
		return ""
	case 1:
		return " (" + recipes[0] + ")"
	default:
		return " (used in: " + strings.Join(recipes, ", ") + ")"
	}
}
