package ingredient

import (
	"strconv"
	"strings"
	"unicode"
)

// QuantityMatch 數量與單位的比對結果
type QuantityMatch struct {
	Quantity *float64 // 解析出的數量
	Unit     *string  // 原始單位拼寫（尚未標準化）
	Span     string   // 命中的子字串（原文座標），供名稱清理時移除
}

// candidate 單一候選片段
type candidate struct {
	start    int
	end      int
	span     string
	quantity *float64
	unit     *string
}

func (c candidate) score() int {
	s := 0
	if c.quantity != nil {
		s += 2
	}
	if c.unit != nil {
		s++
	}
	return s
}

// MatchQuantity 在文字中找出最佳的「數量 + 單位」片段。
// 文字中的數字詞（one..twelve、a、an、half、quarter）會先被替換為數字再比對，
// 返回的 Span 則是輸入原文中的子字串，可直接交給 CleanName。
func MatchQuantity(text string) QuantityMatch {
	replaced, offsets := replaceNumberWords(text)
	m, start, end := matchQuantity(replaced)
	if m.Span != "" {
		m.Span = text[offsets[start]:offsets[end]]
	}
	return m
}

// replaceNumberWords 將整詞的數字詞換成阿拉伯數字。
// offsets[i] 為替換後第 i 個位元組在原文中的位置，長度為 len(結果)+1。
func replaceNumberWords(text string) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(text)+1)
	last := 0
	for _, loc := range tables.numberWordPattern.FindAllStringIndex(text, -1) {
		v, ok := tables.numberWords[strings.ToLower(text[loc[0]:loc[1]])]
		if !ok {
			continue
		}
		for i := last; i < loc[0]; i++ {
			offsets = append(offsets, i)
		}
		b.WriteString(text[last:loc[0]])
		for i := 0; i < len(v); i++ {
			offsets = append(offsets, loc[0])
		}
		b.WriteString(v)
		last = loc[1]
	}
	for i := last; i <= len(text); i++ {
		offsets = append(offsets, i)
	}
	b.WriteString(text[last:])
	return b.String(), offsets
}

// matchQuantity 比對已替換數字詞的文字；另返回 Span 在該文字中的起訖位置
func matchQuantity(text string) (QuantityMatch, int, int) {
	re := tables.candidatePattern
	names := re.SubexpNames()

	var best *candidate
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		groups := make(map[string]string, len(names))
		for i, name := range names {
			if name == "" || loc[2*i] < 0 {
				continue
			}
			groups[name] = text[loc[2*i]:loc[2*i+1]]
		}

		c := candidate{start: loc[0], end: loc[1], span: text[loc[0]:loc[1]]}
		c.quantity = resolveQuantity(groups["num"], groups["glyph"]+groups["glyphonly"])
		if u := groups["unit"] + groups["unitonly"]; u != "" {
			c.unit = &u
		}
		if c.score() == 0 {
			continue
		}
		// 分數相同時保留較左邊的候選
		if best == nil || c.score() > best.score() {
			cc := c
			best = &cc
		}
	}

	if best == nil {
		if loc := tables.leadingNumber.FindStringSubmatchIndex(text); loc != nil {
			if v, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64); err == nil {
				span, start, end := trimSpan(text, loc[0], loc[1])
				return QuantityMatch{Quantity: &v, Span: span}, start, end
			}
		}
		return QuantityMatch{}, 0, 0
	}

	span, start, end := trimSpan(text, best.start, best.end)
	return QuantityMatch{
		Quantity: best.quantity,
		Unit:     best.unit,
		Span:     span,
	}, start, end
}

// trimSpan 去除片段前後空白並同步調整起訖位置
func trimSpan(text string, start, end int) (string, int, int) {
	raw := text[start:end]
	start += len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	end -= len(raw) - len(strings.TrimRightFunc(raw, unicode.IsSpace))
	if start >= end {
		return "", start, start
	}
	return text[start:end], start, end
}

// resolveQuantity 將數字片段與分數字元轉為數值；兩者皆無時返回 nil
func resolveQuantity(num, glyph string) *float64 {
	var (
		total float64
		found bool
	)

	num = strings.TrimSpace(num)
	switch {
	case num == "":
	case strings.Contains(num, "/"):
		// 帶分數與分數逐項相加：1 1/2 → 1 + 0.5
		for _, part := range strings.Fields(num) {
			if v, ok := parseTerm(part); ok {
				total += v
				found = true
			}
		}
	case strings.ContainsAny(num, "-–"):
		bounds := strings.FieldsFunc(num, func(r rune) bool { return r == '-' || r == '–' })
		if len(bounds) == 2 {
			lo, errLo := strconv.ParseFloat(strings.TrimSpace(bounds[0]), 64)
			hi, errHi := strconv.ParseFloat(strings.TrimSpace(bounds[1]), 64)
			if errLo == nil && errHi == nil {
				total = (lo + hi) / 2
				found = true
			}
		}
	default:
		if v, err := strconv.ParseFloat(num, 64); err == nil {
			total = v
			found = true
		}
	}

	for _, r := range glyph {
		if v, ok := tables.fractions[r]; ok {
			total += v
			found = true
		}
	}

	if !found {
		return nil
	}
	return &total
}

// parseTerm 解析 "a/b" 或整數；分母為零的項目忽略
func parseTerm(term string) (float64, bool) {
	if n, d, ok := strings.Cut(term, "/"); ok {
		num, err1 := strconv.ParseFloat(n, 64)
		den, err2 := strconv.ParseFloat(d, 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0, false
		}
		return num / den, true
	}
	v, err := strconv.ParseFloat(term, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
