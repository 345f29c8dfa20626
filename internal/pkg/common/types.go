package common

import (
	"fmt"
	"time"
)

// MealTypes 允許的餐別
var MealTypes = []string{"breakfast", "lunch", "dinner"}

// SourceTypes 允許的食譜來源
var SourceTypes = []string{"url", "pdf", "docx", "cookbook", "manual"}

// WeekRef 以 ISO 週次與年份識別一週
type WeekRef struct {
	Week int `json:"week" form:"week"`
	Year int `json:"year" form:"year"`
}

// CurrentWeek 返回指定時間所在的 ISO 週次
func CurrentWeek(now time.Time) WeekRef {
	year, week := now.ISOWeek()
	return WeekRef{Week: week, Year: year}
}

// Validate 檢查週次與年份範圍
func (w WeekRef) Validate() error {
	if w.Year < 1970 || w.Year > 9999 {
		return ErrInvalidWeek.Wrap(fmt.Errorf("year %d out of range", w.Year))
	}
	if w.Week < 1 || w.Week > weeksInYear(w.Year) {
		return ErrInvalidWeek.Wrap(fmt.Errorf("week %d out of range for %d", w.Week, w.Year))
	}
	return nil
}

// OrCurrent 未指定的欄位以目前週次補上
func (w WeekRef) OrCurrent(now time.Time) WeekRef {
	cur := CurrentWeek(now)
	if w.Week == 0 {
		w.Week = cur.Week
	}
	if w.Year == 0 {
		w.Year = cur.Year
	}
	return w
}

func (w WeekRef) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}

// weeksInYear 12 月 28 日一定落在該年最後一個 ISO 週
func weeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// Contains 檢查字串是否在清單中
func Contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
