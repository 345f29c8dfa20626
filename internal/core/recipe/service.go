package recipe

import (
	"context"
	"fmt"
	"strings"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/scraper"
	"meal-planner/internal/infrastructure/cache"
	"meal-planner/internal/infrastructure/store"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const scrapeNamespace = "scrape"

// Store 食譜服務需要的資料存取
type Store interface {
	CreateRecipe(ctx context.Context, r *store.Recipe) (*store.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*store.Recipe, error)
	ListRecipes(ctx context.Context, search string) ([]store.Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, u store.RecipeUpdate) (*store.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error
	ListIngredientTexts(ctx context.Context) ([]store.Ingredient, error)
	UpdateIngredientParse(ctx context.Context, id int64, p store.IngredientParse) error
}

// Fetcher 從網址擷取食譜
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*scraper.ScrapedRecipe, error)
}

// Service 食譜服務
type Service struct {
	store   Store
	queue   *queue.Manager
	fetcher Fetcher
	cache   cache.Cache
}

// NewService 創建新的食譜服務；cache 可以為 nil
func NewService(st Store, q *queue.Manager, fetcher Fetcher, c cache.Cache) *Service {
	return &Service{
		store:   st,
		queue:   q,
		fetcher: fetcher,
		cache:   c,
	}
}

// Create 驗證輸入、解析食材並寫入食譜
func (s *Service) Create(ctx context.Context, in CreateRecipeInput) (*store.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, common.NewValidationError("recipe name is required")
	}
	sourceType := strings.TrimSpace(in.SourceType)
	if sourceType == "" {
		sourceType = "manual"
	}
	if !common.Contains(common.SourceTypes, sourceType) {
		return nil, common.NewValidationError(fmt.Sprintf("invalid source_type %q", in.SourceType))
	}

	r := &store.Recipe{
		Name:              name,
		SourceType:        sourceType,
		SourceURL:         in.SourceURL,
		SourceFileName:    in.SourceFileName,
		SourceCookbookRef: in.SourceCookbookRef,
		Notes:             in.Notes,
	}
	r.Ingredients = buildIngredients(in.Ingredients)

	created, err := s.store.CreateRecipe(ctx, r)
	if err != nil {
		return nil, err
	}
	common.LogInfo("食譜已建立",
		zap.Int64("recipe_id", created.ID),
		zap.String("name", created.Name),
		zap.Int("ingredients", len(created.Ingredients)),
	)
	return created, nil
}

// Update 更新名稱與備註；提供 ingredients 時整批取代並重新解析
func (s *Service) Update(ctx context.Context, id int64, in UpdateRecipeInput) (*store.Recipe, error) {
	var u store.RecipeUpdate
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, common.NewValidationError("recipe name cannot be empty")
		}
		u.Name = &name
	}
	u.Notes = in.Notes
	if in.Ingredients != nil {
		u.Ingredients = buildIngredients(*in.Ingredients)
	}

	updated, err := s.store.UpdateRecipe(ctx, id, u)
	if err != nil {
		return nil, err
	}
	common.LogInfo("食譜已更新",
		zap.Int64("recipe_id", id),
		zap.Bool("ingredients_replaced", in.Ingredients != nil),
		zap.Int("ingredients", len(updated.Ingredients)),
	)
	return updated, nil
}

// buildIngredients 依輸入順序建立食材；空白行略過但 sort_order 仍為原索引。
// 返回值永不為 nil。
func buildIngredients(inputs []IngredientInput) []store.Ingredient {
	out := make([]store.Ingredient, 0, len(inputs))
	for i, input := range inputs {
		ing, ok := buildIngredient(input)
		if !ok {
			continue
		}
		ing.SortOrder = i
		out = append(out, ing)
	}
	return out
}

// buildIngredient 結構化輸入直接使用，其餘解析文字；空白行返回 false
func buildIngredient(in IngredientInput) (store.Ingredient, bool) {
	text := strings.TrimSpace(in.IngredientText)

	if in.structured() {
		name := strings.TrimSpace(*in.IngredientName)
		if name != "" {
			category := in.Category
			if !ingredient.IsCategory(category) {
				category = ingredient.Categorize(name)
			}
			var unit *string
			if in.Unit != nil && strings.TrimSpace(*in.Unit) != "" {
				u := strings.TrimSpace(*in.Unit)
				unit = &u
			}
			if text == "" {
				text = describe(in.Quantity, unit, name)
			}
			return store.Ingredient{
				IngredientText: text,
				Quantity:       in.Quantity,
				Unit:           unit,
				IngredientName: &name,
				Category:       category,
			}, true
		}
	}

	if text == "" {
		return store.Ingredient{}, false
	}
	p := ingredient.Parse(text)
	return store.Ingredient{
		IngredientText: text,
		Quantity:       p.Quantity,
		Unit:           p.Unit,
		IngredientName: p.Name,
		Category:       p.Category,
	}, true
}

// describe 為沒有原始文字的結構化食材組出一行文字
func describe(quantity *float64, unit *string, name string) string {
	parts := make([]string, 0, 3)
	if quantity != nil {
		parts = append(parts, ingredient.FormatAmount(*quantity))
	}
	if unit != nil {
		parts = append(parts, *unit)
	}
	parts = append(parts, name)
	return strings.Join(parts, " ")
}

// Get 取得單一食譜
func (s *Service) Get(ctx context.Context, id int64) (*store.Recipe, error) {
	return s.store.GetRecipe(ctx, id)
}

// List 依名稱搜尋食譜
func (s *Service) List(ctx context.Context, search string) ([]store.Recipe, error) {
	return s.store.ListRecipes(ctx, strings.TrimSpace(search))
}

// Delete 刪除食譜
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	common.LogInfo("食譜已刪除", zap.Int64("recipe_id", id))
	return nil
}

// ImportFromURL 抓取並解析網頁食譜，結果依網址快取
func (s *Service) ImportFromURL(ctx context.Context, rawURL string) (*ImportPreview, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, common.NewValidationError("url is required")
	}

	var scraped scraper.ScrapedRecipe
	cached := false
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, scrapeNamespace, rawURL); ok {
			if err := common.ParseJSON(v, &scraped); err == nil {
				cached = true
			} else {
				common.LogWarn("快取內容無法解析，重新抓取", zap.String("url", rawURL), zap.Error(err))
			}
		}
	}

	if !cached {
		fetched, err := s.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		scraped = *fetched
		if s.cache != nil {
			if v, err := common.ToJSON(scraped); err == nil {
				if err := s.cache.Set(ctx, scrapeNamespace, rawURL, v); err != nil {
					common.LogWarn("快取寫入失敗", zap.String("url", rawURL), zap.Error(err))
				}
			}
		}
	}

	return &ImportPreview{
		Recipe: scraped,
		Parsed: ingredient.ParseList(scraped.Ingredients),
	}, nil
}
