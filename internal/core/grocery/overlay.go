package grocery

import (
	"context"
	"fmt"
	"strings"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/infrastructure/store"
	"meal-planner/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Overlay 使用者在採購清單上的狀態。
// 鍵的格式為 "<category>:<小寫名稱>"。
type Overlay struct {
	PurchasedKeys []string     `json:"purchasedKeys"`
	RemovedKeys   []string     `json:"removedKeys"`
	CustomItems   []CustomItem `json:"customItems"`
}

// CustomItem 使用者自行加入的項目
type CustomItem struct {
	ID         string                      `json:"id"`
	Name       string                      `json:"name"`
	Quantities []ingredient.QuantityBucket `json:"quantities"`
	Category   string                      `json:"category"`
	UsedIn     []string                    `json:"usedIn"`
	Purchased  bool                        `json:"purchased"`
	Custom     bool                        `json:"custom"`
}

// SaveOverlayInput 儲存覆蓋層的請求
type SaveOverlayInput struct {
	Week    int      `json:"week"`
	Year    int      `json:"year"`
	Overlay *Overlay `json:"overlay"`
}

// customItemID 由計畫與項目內容推導出固定的 ID，重新載入後不變
func customItemID(planID int64, category, name string) string {
	seed := fmt.Sprintf("%d:%s", planID, OverlayKey(category, name))
	return "custom-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

// OverlayKey 組出覆蓋層使用的鍵
func OverlayKey(category, name string) string {
	return category + ":" + strings.ToLower(name)
}

func emptyOverlay() *Overlay {
	return &Overlay{
		PurchasedKeys: []string{},
		RemovedKeys:   []string{},
		CustomItems:   []CustomItem{},
	}
}

// Overlay 讀取指定週的覆蓋層；沒有計畫時返回空的覆蓋層
func (s *Service) Overlay(ctx context.Context, ref common.WeekRef) (*Overlay, error) {
	ref = ref.OrCurrent(s.now())
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.findPlanOrNil(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := emptyOverlay()
	if plan == nil {
		return out, nil
	}

	rows, err := s.store.GetOverlay(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		switch {
		case row.Custom:
			out.CustomItems = append(out.CustomItems, CustomItem{
				ID:         customItemID(plan.ID, row.Category, row.ItemName),
				Name:       row.ItemName,
				Quantities: []ingredient.QuantityBucket{},
				Category:   row.Category,
				UsedIn:     []string{},
				Purchased:  row.Purchased,
				Custom:     true,
			})
		case row.Removed:
			out.RemovedKeys = append(out.RemovedKeys, OverlayKey(row.Category, row.ItemName))
		case row.Purchased:
			out.PurchasedKeys = append(out.PurchasedKeys, OverlayKey(row.Category, row.ItemName))
		}
	}
	return out, nil
}

// SaveOverlay 以新的狀態取代該週所有覆蓋層資料
func (s *Service) SaveOverlay(ctx context.Context, in SaveOverlayInput) error {
	if in.Week == 0 || in.Year == 0 || in.Overlay == nil {
		return common.NewValidationError("Missing week, year, or overlay")
	}
	ref := common.WeekRef{Week: in.Week, Year: in.Year}
	if err := ref.Validate(); err != nil {
		return err
	}

	plan, err := s.store.FindPlan(ctx, ref.Week, ref.Year)
	if err != nil {
		return err
	}

	items := overlayRows(in.Overlay)
	if err := s.store.ReplaceOverlay(ctx, plan.ID, items); err != nil {
		return err
	}
	common.LogInfo("採購清單狀態已儲存",
		zap.String("week", ref.String()),
		zap.Int("items", len(items)),
	)
	return nil
}

func overlayRows(o *Overlay) []store.OverlayItem {
	items := make([]store.OverlayItem, 0, len(o.PurchasedKeys)+len(o.RemovedKeys)+len(o.CustomItems))

	for _, key := range o.PurchasedKeys {
		if category, name, ok := strings.Cut(key, ":"); ok {
			items = append(items, store.OverlayItem{ItemName: name, Category: category, Purchased: true})
		}
	}
	for _, key := range o.RemovedKeys {
		if category, name, ok := strings.Cut(key, ":"); ok {
			items = append(items, store.OverlayItem{ItemName: name, Category: category, Removed: true})
		}
	}
	for _, item := range o.CustomItems {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		category := item.Category
		if !ingredient.IsCategory(category) {
			category = ingredient.Categorize(name)
		}
		items = append(items, store.OverlayItem{
			ItemName:  name,
			Category:  category,
			Purchased: item.Purchased,
			Custom:    true,
		})
	}
	return items
}
