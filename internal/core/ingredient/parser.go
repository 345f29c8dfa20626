package ingredient

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Parse 解析單行食材文字。
// 不會失敗：無法辨識的部分以 nil 表示，分類永遠有值。
func Parse(text string) ParsedIngredient {
	prepared, _ := replaceNumberWords(prepare(text))
	match, _, _ := matchQuantity(prepared)

	var result ParsedIngredient
	result.Quantity = match.Quantity
	if match.Unit != nil {
		unit := NormalizeUnit(*match.Unit)
		result.Unit = &unit
	}

	name := strings.TrimSpace(CleanName(prepared, match.Span))
	if name != "" {
		result.Name = &name
	}
	result.Category = Categorize(name)

	return result
}

// ParseList 逐行解析，輸出順序與輸入相同
func ParseList(lines []string) []ParsedIngredient {
	results := make([]ParsedIngredient, len(lines))
	for i, line := range lines {
		results[i] = Parse(line)
	}
	return results
}

// prepare 統一 Unicode 形式並將分數斜線換成一般斜線
func prepare(text string) string {
	text = norm.NFC.String(text)
	return strings.ReplaceAll(text, "⁄", "/")
}
