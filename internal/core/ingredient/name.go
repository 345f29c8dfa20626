package ingredient

import (
	"strings"
	"unicode"
)

// trimCutset 名稱前後要去除的零散標點
const trimCutset = " \t,;:.-–—*•·/&+"

// CleanName 從移除數量與單位後的文字推導食材名稱。
// 結果為空時退回去掉數字的原文，再退回原文本身。
func CleanName(text, span string) string {
	name := text
	if span != "" {
		name = strings.Replace(name, span, " ", 1)
	}

	name = tables.digitParen.ReplaceAllString(name, " ")
	name = tables.emptyParen.ReplaceAllString(name, " ")
	name = tables.digitUnit.ReplaceAllString(name, " ")
	name = tables.glyphPattern.ReplaceAllString(name, " ")
	name = collapse(name)

	name = tables.leadingOf.ReplaceAllString(name, "")
	name = stripLeadingWords(name)

	if loc := tables.descriptor.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	// 截斷後可能留下未閉合的括號，例如 "walnuts (optional)" → "walnuts ("
	name = tables.danglingOpen.ReplaceAllString(name, "")
	name = trimPunct(collapse(name))

	if name != "" {
		return name
	}

	fallback := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		if _, ok := tables.fractions[r]; ok {
			return -1
		}
		return r
	}, text)
	if fallback = trimPunct(collapse(fallback)); fallback != "" {
		return fallback
	}
	return text
}

// stripLeadingWords 反覆去除開頭的尺寸、狀態修飾詞與處理方式詞
func stripLeadingWords(name string) string {
	for {
		next := tables.leadingWord.ReplaceAllString(name, "")
		next = tables.leadingOf.ReplaceAllString(next, "")
		if next == name {
			return name
		}
		name = next
	}
}

func collapse(s string) string {
	return strings.TrimSpace(tables.whitespace.ReplaceAllString(s, " "))
}

func trimPunct(s string) string {
	return strings.TrimSpace(strings.Trim(s, trimCutset))
}
