package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ScrapedRecipe 從網頁擷取出的食譜預覽
type ScrapedRecipe struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Servings    *int     `json:"servings,omitempty"`
	SourceURL   string   `json:"source_url"`
}

// Scraper 食譜頁面抓取器
type Scraper struct {
	config config.ScraperConfig
	client *resty.Client
}

// New 創建抓取器
func New(cfg config.ScraperConfig) *Scraper {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Scraper{
		config: cfg,
		client: client,
	}
}

// Fetch 下載頁面並擷取食譜
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*ScrapedRecipe, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, common.NewValidationError(fmt.Sprintf("invalid recipe url: %q", rawURL))
	}

	start := time.Now()
	resp, err := s.client.R().SetContext(ctx).Get(u.String())
	if err != nil {
		common.LogFetch(rawURL, 0, time.Since(start), err)
		return nil, common.ErrScrapeFailed.Wrap(err)
	}
	if resp.IsError() {
		err := fmt.Errorf("unexpected status %s", resp.Status())
		common.LogFetch(rawURL, resp.StatusCode(), time.Since(start), err)
		return nil, common.ErrScrapeFailed.Wrap(err)
	}
	common.LogFetch(rawURL, resp.StatusCode(), time.Since(start), nil)

	body := resp.Body()
	if s.config.MaxBodyBytes > 0 && int64(len(body)) > s.config.MaxBodyBytes {
		common.LogWarn("頁面超過大小限制，已截斷",
			zap.String("url", rawURL),
			zap.Int("size", len(body)),
			zap.Int64("limit", s.config.MaxBodyBytes),
		)
		body = body[:s.config.MaxBodyBytes]
	}

	recipe, err := Extract(string(body))
	if err != nil {
		return nil, err
	}
	recipe.SourceURL = rawURL
	return recipe, nil
}
