package plan

import (
	"net/http"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/planner"

	"github.com/gin-gonic/gin"
)

// Handler 週計畫處理器
type Handler struct {
	service *planner.Service
}

// NewHandler 創建週計畫處理器
func NewHandler(svc *planner.Service) *Handler {
	return &Handler{service: svc}
}

// HandleGet GET /weekly-plan?week=&year=
func (h *Handler) HandleGet(c *gin.Context) {
	ref, ok := handlers.BindWeek(c)
	if !ok {
		return
	}
	view, err := h.service.Week(c.Request.Context(), ref)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// HandleAddMeal POST /weekly-plan
func (h *Handler) HandleAddMeal(c *gin.Context) {
	var req planner.AddMealInput
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	meal, err := h.service.AddMeal(c.Request.Context(), req)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": meal})
}

// HandleRemoveMeal DELETE /weekly-plan/meals/:id
func (h *Handler) HandleRemoveMeal(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.RemoveMeal(c.Request.Context(), id); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
