package recipe

import (
	"net/http"

	"meal-planner/internal/api/handlers"
	recipeService "meal-planner/internal/core/recipe"
	"meal-planner/internal/infrastructure/store"

	"github.com/gin-gonic/gin"
)

// ExtractRequest 從網址擷取食譜
type ExtractRequest struct {
	URL string `json:"url" binding:"required"`
}

// Handler 食譜處理器
type Handler struct {
	service *recipeService.Service
}

// NewHandler 創建食譜處理器
func NewHandler(svc *recipeService.Service) *Handler {
	return &Handler{service: svc}
}

// HandleList GET /recipes?search=
func (h *Handler) HandleList(c *gin.Context) {
	recipes, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	if recipes == nil {
		recipes = []store.Recipe{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// HandleCreate POST /recipes
func (h *Handler) HandleCreate(c *gin.Context) {
	var req recipeService.CreateRecipeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	recipe, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// HandleGet GET /recipes/:id
func (h *Handler) HandleGet(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// HandleUpdate PUT /recipes/:id
func (h *Handler) HandleUpdate(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	var req recipeService.UpdateRecipeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	recipe, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// HandleDelete DELETE /recipes/:id
func (h *Handler) HandleDelete(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HandleReparse POST /recipes/reparse
func (h *Handler) HandleReparse(c *gin.Context) {
	result, err := h.service.Reparse(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleExtract POST /recipes/extract
func (h *Handler) HandleExtract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	preview, err := h.service.ImportFromURL(c.Request.Context(), req.URL)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}
