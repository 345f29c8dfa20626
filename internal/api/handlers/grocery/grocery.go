package grocery

import (
	"fmt"
	"net/http"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/grocery"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler 採購清單處理器
type Handler struct {
	service *grocery.Service
}

// NewHandler 創建採購清單處理器
func NewHandler(svc *grocery.Service) *Handler {
	return &Handler{service: svc}
}

// HandleGet GET /grocery-list?week=&year=
func (h *Handler) HandleGet(c *gin.Context) {
	ref, ok := handlers.BindWeek(c)
	if !ok {
		return
	}
	list, err := h.service.Build(c.Request.Context(), ref)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// HandleExport GET /grocery-list/export?week=&year=
func (h *Handler) HandleExport(c *gin.Context) {
	ref, ok := handlers.BindWeek(c)
	if !ok {
		return
	}
	export, err := h.service.ExportXLSX(c.Request.Context(), ref)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Data(http.StatusOK, xlsxContentType, export.Data)
}

// HandleGetOverlay GET /grocery-list/overlay?week=&year=
func (h *Handler) HandleGetOverlay(c *gin.Context) {
	ref, ok := handlers.BindWeek(c)
	if !ok {
		return
	}
	overlay, err := h.service.Overlay(c.Request.Context(), ref)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, overlay)
}

// HandleSaveOverlay POST /grocery-list/overlay
func (h *Handler) HandleSaveOverlay(c *gin.Context) {
	// 覆蓋層整份取代，拒絕拼錯的欄位以免靜默清空資料
	var req grocery.SaveOverlayInput
	if err := common.DecodeJSONStrict(c.Request.Body, &req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	if err := h.service.SaveOverlay(c.Request.Context(), req); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
