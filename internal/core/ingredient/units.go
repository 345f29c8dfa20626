package ingredient

import (
	"strconv"
	"strings"
)

// ItemUnit 沒有單位時使用的哨兵單位
const ItemUnit = "item"

// NormalizeUnit 將單位拼寫轉為標準形式；未知單位轉小寫後原樣返回
func NormalizeUnit(raw string) string {
	unit := strings.Join(strings.Fields(raw), " ")
	if canonical, ok := tables.exactUnits[unit]; ok {
		return canonical
	}
	folded := strings.ToLower(unit)
	if canonical, ok := tables.foldedUnits[folded]; ok {
		return canonical
	}
	return folded
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
