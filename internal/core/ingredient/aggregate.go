package ingredient

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// tallyEntry 單一食材鍵的累計狀態
type tallyEntry struct {
	name     string              // 第一次出現時的原始大小寫名稱
	category string              // 第一次出現時的分類
	units    map[string]*big.Rat // 單位 → 加總
	recipes  map[string]struct{}
}

// Tally 可增量累加、可合併的食材彙總器。
// 數量以有理數累加，輸入順序不影響結果。
type Tally struct {
	entries map[string]*tallyEntry
}

// NewTally 建立空的彙總器
func NewTally() *Tally {
	return &Tally{entries: make(map[string]*tallyEntry)}
}

// Aggregate 合併多道食譜的食材，依分類分組
func Aggregate(contributions []Contribution) GroupedResult {
	t := NewTally()
	for _, c := range contributions {
		t.Add(c)
	}
	return t.Result()
}

// Add 累加一筆貢獻；沒有名稱的貢獻直接略過
func (t *Tally) Add(c Contribution) {
	if c.Parsed.Name == nil {
		return
	}
	name := strings.TrimSpace(*c.Parsed.Name)
	if name == "" {
		return
	}
	key := strings.ToLower(name)

	e, ok := t.entries[key]
	if !ok {
		category := c.Parsed.Category
		if category == "" {
			category = Categorize(name)
		}
		e = &tallyEntry{
			name:     name,
			category: category,
			units:    make(map[string]*big.Rat),
			recipes:  make(map[string]struct{}),
		}
		t.entries[key] = e
	}

	unit := ItemUnit
	if c.Parsed.Unit != nil && strings.TrimSpace(*c.Parsed.Unit) != "" {
		unit = NormalizeUnit(*c.Parsed.Unit)
	}
	sum, ok := e.units[unit]
	if !ok {
		// 沒有數量也要記錄單位
		sum = new(big.Rat)
		e.units[unit] = sum
	}
	if q := c.Parsed.Quantity; q != nil && validAmount(*q) {
		if r := new(big.Rat).SetFloat64(*q); r != nil {
			sum.Add(sum, r)
		}
	}

	if c.RecipeName != "" {
		e.recipes[c.RecipeName] = struct{}{}
	}
}

// Merge 將另一個彙總器併入；同鍵時保留接收者的名稱與分類
func (t *Tally) Merge(other *Tally) {
	if other == nil {
		return
	}
	for key, o := range other.entries {
		e, ok := t.entries[key]
		if !ok {
			e = &tallyEntry{
				name:     o.name,
				category: o.category,
				units:    make(map[string]*big.Rat, len(o.units)),
				recipes:  make(map[string]struct{}, len(o.recipes)),
			}
			t.entries[key] = e
		}
		for unit, amount := range o.units {
			sum, ok := e.units[unit]
			if !ok {
				sum = new(big.Rat)
				e.units[unit] = sum
			}
			sum.Add(sum, amount)
		}
		for r := range o.recipes {
			e.recipes[r] = struct{}{}
		}
	}
}

// Len 返回目前累計的食材鍵數
func (t *Tally) Len() int {
	return len(t.entries)
}

// Result 輸出分組結果。
// 只輸出加總為正的數量桶；每個分類內依名稱（不分大小寫）排序。
func (t *Tally) Result() GroupedResult {
	result := make(GroupedResult)
	for _, e := range t.entries {
		item := AggregatedIngredient{
			Name:       e.name,
			Category:   e.category,
			Quantities: []QuantityBucket{},
			UsedIn:     make([]string, 0, len(e.recipes)),
		}
		for unit, sum := range e.units {
			if sum.Sign() <= 0 {
				continue
			}
			amount, _ := sum.Float64()
			item.Quantities = append(item.Quantities, QuantityBucket{Amount: amount, Unit: unit})
		}
		sort.Slice(item.Quantities, func(i, j int) bool {
			return item.Quantities[i].Unit < item.Quantities[j].Unit
		})
		for r := range e.recipes {
			item.UsedIn = append(item.UsedIn, r)
		}
		sort.Strings(item.UsedIn)

		result[e.category] = append(result[e.category], item)
	}

	for _, items := range result {
		sort.Slice(items, func(i, j int) bool {
			a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
			if a != b {
				return a < b
			}
			return items[i].Name < items[j].Name
		})
	}
	return result
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
