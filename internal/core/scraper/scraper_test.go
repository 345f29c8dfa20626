package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

const jsonLDPage = `<!doctype html>
<html><head><title>Pancakes | Example</title>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"WebPage","name":"Pancakes page"},
  {"@type":["Recipe","NewsArticle"],"name":"Fluffy  Pancakes",
   "recipeYield":["4","4 servings"],
   "recipeIngredient":["2 cups   flour","1 cup milk",""]}
]}
</script></head>
<body><h1>Something else</h1></body></html>`

func TestExtractJSONLDGraph(t *testing.T) {
	r, err := Extract(jsonLDPage)
	require.NoError(t, err)

	assert.Equal(t, "Fluffy Pancakes", r.Name)
	assert.Equal(t, []string{"2 cups flour", "1 cup milk"}, r.Ingredients)
	require.NotNil(t, r.Servings)
	assert.Equal(t, 4, *r.Servings)
}

func TestExtractJSONLDArrayAndLenientKeys(t *testing.T) {
	doc := `<html><body>
<script type="application/ld+json">not json at all</script>
<script type="application/ld+json">[{"@type":"Recipe", name:"Soup", recipeIngredient:["1 onion"], recipeYield:"6 bowls"}]</script>
</body></html>`

	r, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "Soup", r.Name)
	assert.Equal(t, []string{"1 onion"}, r.Ingredients)
	require.NotNil(t, r.Servings)
	assert.Equal(t, 6, *r.Servings)
}

func TestExtractSkipsRecipeWithoutIngredients(t *testing.T) {
	doc := `<html><head><title>Stew</title>
<script type="application/ld+json">{"@type":"Recipe","name":"Stew","recipeIngredient":[]}</script></head>
<body><ul class="recipe-ingredients"><li>1 lb beef</li><li> 2  carrots </li></ul></body></html>`

	r, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "Stew", r.Name)
	assert.Equal(t, []string{"1 lb beef", "2 carrots"}, r.Ingredients)
	assert.Nil(t, r.Servings)
}

func TestExtractHTMLFallback(t *testing.T) {
	long := strings.Repeat("x", 250)
	doc := `<html><head><title>Page Title</title></head><body>
<h1> Grandma's <em>Chili</em> </h1>
<div class="IngredientList"><ul>
  <li>1 can <b>beans</b></li>
  <li>` + long + `</li>
  <li>   </li>
</ul></div>
<ul><li>Not an ingredient</li></ul>
</body></html>`

	r, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "Grandma's Chili", r.Name)
	assert.Equal(t, []string{"1 can beans"}, r.Ingredients)
}

func TestExtractItempropFallback(t *testing.T) {
	doc := `<html><head><title>Salad</title></head><body>
<span itemprop="recipeIngredient">1 head lettuce</span>
<span itemprop="recipeIngredient">2 tomatoes</span>
</body></html>`

	r, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "Salad", r.Name)
	assert.Equal(t, []string{"1 head lettuce", "2 tomatoes"}, r.Ingredients)
}

func TestExtractNoRecipe(t *testing.T) {
	_, err := Extract(`<html><body><h1>Blog</h1><p>no list here</p></body></html>`)
	assert.ErrorIs(t, err, common.ErrNoRecipeData)
}

func TestParseYield(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want int
		ok   bool
	}{
		{"number", float64(8), 8, true},
		{"json number", json.Number("3"), 3, true},
		{"string", "4 servings", 4, true},
		{"array", []interface{}{"2", "2 loaves"}, 2, true},
		{"no digits", "serves many", 0, false},
		{"missing", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseYield(tt.in)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func newTestScraper() *Scraper {
	return New(config.ScraperConfig{Timeout: 5 * time.Second, UserAgent: "meal-planner-test"})
}

func TestFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(jsonLDPage))
	}))
	defer srv.Close()

	r, err := newTestScraper().Fetch(context.Background(), srv.URL+"/pancakes")
	require.NoError(t, err)
	assert.Equal(t, "Fluffy Pancakes", r.Name)
	assert.Equal(t, srv.URL+"/pancakes", r.SourceURL)
	assert.Equal(t, "meal-planner-test", gotUA)
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := newTestScraper()

	_, err := s.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, common.ErrScrapeFailed)

	_, err = s.Fetch(context.Background(), "ftp://example.com/recipe")
	assert.True(t, common.IsValidationError(err))
}
