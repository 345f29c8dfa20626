package ingredient

import (
	"fmt"
	"net/http"
	"strings"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParseRequest 解析多行食材文字
type ParseRequest struct {
	Lines []string `json:"lines" binding:"required"`
}

// ParseResponse 解析結果，順序與輸入相同
type ParseResponse struct {
	Parsed []ingredient.ParsedIngredient `json:"parsed"`
}

// AggregateItem 一筆待彙總的食材：原始文字或已解析的結構
type AggregateItem struct {
	Text       *string                      `json:"text"`
	Parsed     *ingredient.ParsedIngredient `json:"parsed"`
	RecipeName string                       `json:"recipe_name"`
}

// AggregateRequest 彙總請求
type AggregateRequest struct {
	Items []AggregateItem `json:"items" binding:"required"`
}

// AggregateResponse 彙總結果與 Markdown 採購清單
type AggregateResponse struct {
	Aggregated  ingredient.GroupedResult `json:"aggregated"`
	GroceryList string                   `json:"grocery_list"`
}

// HandleParse POST /ingredients/parse
func HandleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	parsed := ingredient.ParseList(req.Lines)
	common.LogDebug("食材解析完成",
		zap.Int("lines", len(req.Lines)),
		zap.String("request_id", handlers.RequestID(c)),
	)
	c.JSON(http.StatusOK, ParseResponse{Parsed: parsed})
}

// HandleAggregate POST /ingredients/aggregate
func HandleAggregate(c *gin.Context) {
	var req AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	contributions, err := toContributions(req.Items)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	result := ingredient.Aggregate(contributions)
	c.JSON(http.StatusOK, AggregateResponse{
		Aggregated:  result,
		GroceryList: ingredient.Format(result),
	})
}

func toContributions(items []AggregateItem) ([]ingredient.Contribution, error) {
	out := make([]ingredient.Contribution, 0, len(items))
	for i, item := range items {
		var parsed ingredient.ParsedIngredient
		switch {
		case item.Parsed != nil:
			parsed = *item.Parsed
		case item.Text != nil && strings.TrimSpace(*item.Text) != "":
			parsed = ingredient.Parse(*item.Text)
		default:
			return nil, common.NewValidationError(fmt.Sprintf("item %d needs text or parsed", i))
		}
		out = append(out, ingredient.Contribution{
			Parsed:     parsed,
			RecipeName: item.RecipeName,
		})
	}
	return out, nil
}
