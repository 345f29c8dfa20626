package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/core/grocery"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/scraper"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:     config.AppConfig{Version: "test"},
		Server:  config.ServerConfig{MaxBodyBytes: 1 << 20},
		Grocery: config.GroceryConfig{APIKey: "secret", ShardSize: 500},
		// 測試中同樣的 POST 會在很短時間內重複送出
		DedupWindow: time.Nanosecond,
	}

	st, err := store.Open(context.Background(), config.DatabaseConfig{Driver: store.DriverSQLite, URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	q := queue.NewManager(config.QueueConfig{Workers: 2, MaxSize: 10})
	q.Start()
	t.Cleanup(q.Close)

	router, err := SetupRouter(cfg, Services{
		DB:      st,
		Queue:   q,
		Recipes: recipe.NewService(st, q, scraper.New(config.ScraperConfig{Timeout: time.Second}), nil),
		Planner: planner.NewService(st),
		Grocery: grocery.NewService(st, cfg.Grocery.ShardSize),
	})
	require.NoError(t, err)
	return router
}

func request(t *testing.T, r http.Handler, method, target, body string, header ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestSetupRouterRequiresServices(t *testing.T) {
	_, err := SetupRouter(&config.Config{}, Services{})
	assert.Error(t, err)
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w, body := request(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, body = request(t, r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])

	w, _ = request(t, r, http.MethodGet, "/live", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIngredientEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w, body := request(t, r, http.MethodPost, "/api/v1/ingredients/parse", `{"lines":["2 cups flour","salt to taste"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	parsed := body["parsed"].([]interface{})
	require.Len(t, parsed, 2)
	first := parsed[0].(map[string]interface{})
	assert.Equal(t, 2.0, first["quantity"])
	assert.Equal(t, "cup", first["unit"])
	assert.Equal(t, "flour", first["ingredient_name"])
	assert.Nil(t, parsed[1].(map[string]interface{})["quantity"])

	w, body = request(t, r, http.MethodPost, "/api/v1/ingredients/aggregate", `{"items":[
		{"text":"2 cups flour","recipe_name":"Pancakes"},
		{"parsed":{"quantity":1,"unit":"cup","ingredient_name":"flour","category":"pantry"},"recipe_name":"Waffles"}
	]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["grocery_list"], "- 3 cup flour (used in: Pancakes, Waffles)")

	w, body = request(t, r, http.MethodPost, "/api/v1/ingredients/aggregate", `{"items":[{"recipe_name":"x"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", body["code"])
}

func TestPlanToGroceryListFlow(t *testing.T) {
	r := newTestRouter(t)

	w, body := request(t, r, http.MethodPost, "/api/v1/recipes",
		`{"name":"Pancakes","source_type":"manual","ingredients":["2 cups flour","1 1/2 tsp salt"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipeID := body["recipe"].(map[string]interface{})["id"].(float64)

	// 沒有計畫時採購清單返回 404
	w, body = request(t, r, http.MethodGet, "/api/v1/grocery-list?week=10&year=2026", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PLAN_NOT_FOUND", body["code"])

	meal := `{"week_number":10,"year":2026,"recipe_id":` + jsonNumber(recipeID) + `,"day_of_week":1,"meal_type":"breakfast"}`
	w, _ = request(t, r, http.MethodPost, "/api/v1/weekly-plan", meal)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body = request(t, r, http.MethodGet, "/api/v1/weekly-plan?week=10&year=2026", "")
	require.Equal(t, http.StatusOK, w.Code)
	meals := body["meals"].([]interface{})
	require.Len(t, meals, 1)
	assert.Equal(t, "Pancakes", meals[0].(map[string]interface{})["recipe_name"])

	w, body = request(t, r, http.MethodGet, "/api/v1/grocery-list?week=10&year=2026", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["grocery_list"], "## Pantry\n\n- 2 cup flour (Pancakes)\n")
	assert.Contains(t, body["grocery_list"], "- 1 ½ tsp salt (Pancakes)\n")

	w, _ = request(t, r, http.MethodGet, "/api/v1/grocery-list?week=10&year=2026", "", "X-Api-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = request(t, r, http.MethodGet, "/api/v1/grocery-list/export?week=10&year=2026", "", "X-Api-Key", "secret")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "grocery-list-2026-W10.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())

	w, _ = request(t, r, http.MethodPost, "/api/v1/grocery-list/overlay",
		`{"week":10,"year":2026,"overlay":{"purchasedKeys":["pantry:flour"],"removedKeys":[],"customItems":[{"name":"Foil","category":"other"}]}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body = request(t, r, http.MethodGet, "/api/v1/grocery-list/overlay?week=10&year=2026", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"pantry:flour"}, body["purchasedKeys"])
	assert.Len(t, body["customItems"], 1)

	w, body = request(t, r, http.MethodPost, "/api/v1/recipes/reparse", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2.0, body["updated"])
}

func TestUpdateRecipe(t *testing.T) {
	r := newTestRouter(t)

	w, body := request(t, r, http.MethodPost, "/api/v1/recipes", `{"name":"Brownies","ingredients":["1 cup sugar"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := jsonNumber(body["recipe"].(map[string]interface{})["id"].(float64))

	w, body = request(t, r, http.MethodPut, "/api/v1/recipes/"+id,
		`{"name":"Fudge Brownies","notes":"cut small","ingredients":["2 cups sugar","1 cup walnuts (optional)"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	recipe := body["recipe"].(map[string]interface{})
	assert.Equal(t, "Fudge Brownies", recipe["name"])
	assert.Equal(t, "cut small", recipe["notes"])
	ingredients := recipe["ingredients"].([]interface{})
	require.Len(t, ingredients, 2)
	assert.Equal(t, "walnuts", ingredients[1].(map[string]interface{})["ingredient_name"])

	w, body = request(t, r, http.MethodGet, "/api/v1/recipes/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["recipe"].(map[string]interface{})["ingredients"].([]interface{})[0].(map[string]interface{})["quantity"])

	w, body = request(t, r, http.MethodPut, "/api/v1/recipes/999", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RECIPE_NOT_FOUND", body["code"])

	w, _ = request(t, r, http.MethodPut, "/api/v1/recipes/"+id, `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownRoutes(t *testing.T) {
	r := newTestRouter(t)

	w, body := request(t, r, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	w, body = request(t, r, http.MethodPatch, "/api/v1/weekly-plan", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body["code"])
}

func TestOverlayRejectsUnknownFields(t *testing.T) {
	r := newTestRouter(t)

	w, body := request(t, r, http.MethodPost, "/api/v1/grocery-list/overlay",
		`{"week":10,"year":2026,"overlay":{"purchasedKey":["pantry:flour"]}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", body["code"])
}

func TestRecipeErrors(t *testing.T) {
	r := newTestRouter(t)

	w, body := request(t, r, http.MethodGet, "/api/v1/recipes/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RECIPE_NOT_FOUND", body["code"])

	w, _ = request(t, r, http.MethodGet, "/api/v1/recipes/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = request(t, r, http.MethodPost, "/api/v1/recipes", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = request(t, r, http.MethodPost, "/api/v1/weekly-plan", `{"recipe_id":1,"day_of_week":9,"meal_type":"lunch"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = request(t, r, http.MethodGet, "/api/v1/recipes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["recipes"])
}

func jsonNumber(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
