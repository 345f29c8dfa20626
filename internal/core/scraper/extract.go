package scraper

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxLineLength = 200

// page 一次走訪 HTML 收集到的內容
type page struct {
	jsonLD    []string
	h1        string
	title     string
	listItems []string // class 含 ingredient 的元素底下的 <li>
	itemprops []string // itemprop="recipeIngredient"
}

// Extract 從 HTML 擷取食譜：先找 JSON-LD，再退回常見的 HTML 結構
func Extract(doc string) (*ScrapedRecipe, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, common.ErrNoRecipeData.Wrap(err)
	}

	p := &page{}
	p.walk(root, false)

	for _, block := range p.jsonLD {
		if recipe := fromJSONLD(block); recipe != nil {
			return recipe, nil
		}
	}

	return p.fromHTML()
}

func (p *page) walk(n *html.Node, inIngredients bool) {
	if n.Type == html.ElementNode {
		switch {
		case n.DataAtom == atom.Script:
			if strings.EqualFold(strings.TrimSpace(attr(n, "type")), "application/ld+json") && n.FirstChild != nil {
				p.jsonLD = append(p.jsonLD, n.FirstChild.Data)
			}
			return
		case n.DataAtom == atom.Style:
			return
		case n.DataAtom == atom.Title:
			if p.title == "" {
				p.title = textContent(n)
			}
			return
		case n.DataAtom == atom.H1:
			if p.h1 == "" {
				p.h1 = textContent(n)
			}
		case attr(n, "itemprop") == "recipeIngredient":
			p.itemprops = append(p.itemprops, textContent(n))
			return
		case n.DataAtom == atom.Li && inIngredients:
			p.listItems = append(p.listItems, textContent(n))
			return
		}
		if strings.Contains(strings.ToLower(attr(n, "class")), "ingredient") {
			inIngredients = true
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, inIngredients)
	}
}

func (p *page) fromHTML() (*ScrapedRecipe, error) {
	name := p.h1
	if name == "" {
		name = p.title
	}

	lines := p.listItems
	if len(lines) == 0 {
		lines = p.itemprops
	}
	ingredients := cleanLines(lines)

	if name == "" || len(ingredients) == 0 {
		return nil, common.ErrNoRecipeData.Wrap(fmt.Errorf("could not extract recipe name or ingredients from the page"))
	}
	return &ScrapedRecipe{Name: name, Ingredients: ingredients}, nil
}

// fromJSONLD 解析一個 JSON-LD 區塊；格式不嚴謹時補上鍵的引號再試一次
func fromJSONLD(block string) *ScrapedRecipe {
	var data interface{}
	if err := common.ParseJSON(block, &data); err != nil {
		if err := common.ParseJSON(common.QuoteJSONKeys(block), &data); err != nil {
			common.LogDebug("JSON-LD 解析失敗", zap.Error(err))
			return nil
		}
	}
	return findRecipe(data)
}

func findRecipe(v interface{}) *ScrapedRecipe {
	switch node := v.(type) {
	case []interface{}:
		for _, item := range node {
			if r := findRecipe(item); r != nil {
				return r
			}
		}
	case map[string]interface{}:
		if isRecipeType(node["@type"]) {
			name, _ := node["name"].(string)
			name = common.CollapseSpace(name)
			ingredients := cleanLines(stringList(node["recipeIngredient"]))
			if name != "" && len(ingredients) > 0 {
				return &ScrapedRecipe{
					Name:        name,
					Ingredients: ingredients,
					Servings:    parseYield(node["recipeYield"]),
				}
			}
		}
		if graph, ok := node["@graph"]; ok {
			if r := findRecipe(graph); r != nil {
				return r
			}
		}
		if entity, ok := node["mainEntity"]; ok {
			return findRecipe(entity)
		}
	}
	return nil
}

func isRecipeType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func stringList(v interface{}) []string {
	switch items := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{items}
	}
	return nil
}

// parseYield 取 recipeYield 開頭的整數，例如 "4 servings" 或 ["4", "4 servings"]
func parseYield(v interface{}) *int {
	var s string
	switch y := v.(type) {
	case float64:
		n := int(y)
		if n <= 0 {
			return nil
		}
		return &n
	case json.Number:
		s = y.String()
	case string:
		s = y
	case []interface{}:
		if len(y) == 0 {
			return nil
		}
		return parseYield(y[0])
	default:
		return nil
	}

	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// cleanLines 合併空白，只保留 1 到 199 個字元的行
func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = common.CollapseSpace(line)
		if n := utf8.RuneCountInString(line); n > 0 && n < maxLineLength {
			out = append(out, line)
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return common.CollapseSpace(b.String())
}
