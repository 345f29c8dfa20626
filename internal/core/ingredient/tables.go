package ingredient

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var rawTables []byte

// unitEntry 單位表條目
type unitEntry struct {
	Canonical string   `yaml:"canonical"`
	Spellings []string `yaml:"spellings"`
}

// categoryEntry 分類表條目
type categoryEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// tableFile tables.yaml 的結構
type tableFile struct {
	Units       []unitEntry        `yaml:"units"`
	Categories  []categoryEntry    `yaml:"categories"`
	NumberWords map[string]float64 `yaml:"number_words"`
	Fractions   map[string]float64 `yaml:"fractions"`
	Modifiers   []string           `yaml:"modifiers"`
	Descriptors []string           `yaml:"descriptors"`
}

// tableSet 載入後的唯讀表格與預先編譯的正則
type tableSet struct {
	exactUnits  map[string]string // 原始拼寫（區分大小寫）→ 標準單位
	foldedUnits map[string]string // 小寫拼寫 → 標準單位
	categories  []categoryEntry
	categorySet map[string]struct{}
	numberWords map[string]string
	fractions   map[rune]float64

	numberWordPattern *regexp.Regexp
	candidatePattern  *regexp.Regexp
	leadingNumber     *regexp.Regexp
	digitParen        *regexp.Regexp
	emptyParen        *regexp.Regexp
	digitUnit         *regexp.Regexp
	glyphPattern      *regexp.Regexp
	leadingOf         *regexp.Regexp
	leadingWord       *regexp.Regexp
	descriptor        *regexp.Regexp
	danglingOpen      *regexp.Regexp
	whitespace        *regexp.Regexp
}

// tables 程序啟動時載入一次，之後不再修改
var tables = mustLoadTables(rawTables)

func mustLoadTables(data []byte) *tableSet {
	t, err := loadTables(data)
	if err != nil {
		panic(fmt.Sprintf("ingredient: invalid tables.yaml: %v", err))
	}
	return t
}

func loadTables(data []byte) (*tableSet, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	if len(file.Units) == 0 || len(file.Categories) == 0 {
		return nil, fmt.Errorf("units and categories are required")
	}
	if len(file.Fractions) == 0 || len(file.Descriptors) == 0 {
		return nil, fmt.Errorf("fractions and descriptors are required")
	}

	t := &tableSet{
		exactUnits:  make(map[string]string),
		foldedUnits: make(map[string]string),
		categories:  file.Categories,
		categorySet: make(map[string]struct{}, len(file.Categories)),
		numberWords: make(map[string]string, len(file.NumberWords)),
		fractions:   make(map[rune]float64, len(file.Fractions)),
	}

	var spellings []string
	for _, u := range file.Units {
		for _, s := range u.Spellings {
			t.exactUnits[s] = u.Canonical
			folded := strings.ToLower(s)
			// 大小寫衝突時（T / t）保留第一個出現的
			if _, exists := t.foldedUnits[folded]; !exists {
				t.foldedUnits[folded] = u.Canonical
			}
			spellings = append(spellings, s)
		}
	}

	for i, c := range file.Categories {
		// 空字串關鍵字會命中任何名稱，載入時濾掉
		keywords := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		t.categories[i].Keywords = keywords
		t.categorySet[c.Name] = struct{}{}
	}

	words := make([]string, 0, len(file.NumberWords))
	for w, v := range file.NumberWords {
		t.numberWords[strings.ToLower(w)] = formatNumber(v)
		words = append(words, regexp.QuoteMeta(w))
	}
	sort.Strings(words)

	var glyphs strings.Builder
	for g, v := range file.Fractions {
		r := []rune(g)
		if len(r) != 1 {
			return nil, fmt.Errorf("fraction glyph %q must be a single rune", g)
		}
		t.fractions[r[0]] = v
		glyphs.WriteRune(r[0])
	}
	glyphClass := "[" + glyphs.String() + "]"

	unitAlt := alternation(spellings)
	number := `\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?\s*[-–]\s*\d+(?:\.\d+)?|\d+(?:\.\d+)?|\.\d+`
	quantity := `(?:(?P<num>` + number + `)(?:\s*(?P<glyph>` + glyphClass + `))?|(?P<glyphonly>` + glyphClass + `))`

	t.numberWordPattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`)
	t.candidatePattern = regexp.MustCompile(`(?i)` + quantity + `(?:\s*(?P<unit>` + unitAlt + `)\b)?|\b(?P<unitonly>` + unitAlt + `)\b`)
	t.leadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s+`)
	t.digitParen = regexp.MustCompile(`\([^)]*\d[^)]*\)`)
	t.emptyParen = regexp.MustCompile(`\(\s*\)`)
	t.digitUnit = regexp.MustCompile(`(?i)\d+(?:\s+\d+/\d+|/\d+|\.\d+)?\s*` + glyphClass + `?\s*(?:` + unitAlt + `)\b`)
	t.glyphPattern = regexp.MustCompile(glyphClass)
	t.leadingOf = regexp.MustCompile(`(?i)^of\s+`)
	t.leadingWord = regexp.MustCompile(`(?i)^(?:` + alternation(append(append([]string{}, file.Modifiers...), file.Descriptors...)) + `)\b[\s,]*`)
	t.descriptor = regexp.MustCompile(`(?i)\b(?:` + alternation(file.Descriptors) + `)\b`)
	t.danglingOpen = regexp.MustCompile(`[(\[][^)\]]*$`)
	t.whitespace = regexp.MustCompile(`\s+`)

	return t, nil
}

// alternation 依長度由長到短排列，避免較短的拼寫遮蔽較長的拼寫
func alternation(words []string) string {
	sorted := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		sorted = append(sorted, w)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return strings.Join(quoted, "|")
}
