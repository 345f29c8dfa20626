package grocery

import (
	"context"
	"fmt"
	"strings"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/pkg/common"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Grocery List"

var exportHeader = []interface{}{"Category", "Item", "Quantity", "Used In"}

// Export 匯出的檔案
type Export struct {
	FileName string
	Data     []byte
}

// ExportXLSX 將採購清單匯出為單一工作表的 xlsx
func (s *Service) ExportXLSX(ctx context.Context, ref common.WeekRef) (*Export, error) {
	list, err := s.Build(ctx, ref)
	if err != nil {
		return nil, err
	}
	data, err := renderXLSX(list.Aggregated)
	if err != nil {
		return nil, err
	}
	common.LogInfo("採購清單已匯出",
		zap.Int("week", list.Week),
		zap.Int("year", list.Year),
		zap.Int("bytes", len(data)),
	)
	return &Export{
		FileName: fmt.Sprintf("grocery-list-%d-W%02d.xlsx", list.Year, list.Week),
		Data:     data,
	}, nil
}

func renderXLSX(result ingredient.GroupedResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			common.LogWarn("關閉 xlsx 失敗", zap.Error(err))
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", "D1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, category := range ingredient.OrderedCategories(result) {
		for _, item := range result[category] {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			values := []interface{}{
				ingredient.DisplayName(category),
				item.Name,
				ingredient.FormatQuantities(item.Quantities),
				strings.Join(item.UsedIn, ", "),
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 22); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "B", "D", 30); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
