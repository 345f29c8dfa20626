package api

import (
	"context"
	"fmt"
	"time"

	"meal-planner/internal/api/handlers"
	groceryHandler "meal-planner/internal/api/handlers/grocery"
	"meal-planner/internal/api/handlers/health"
	ingredientHandler "meal-planner/internal/api/handlers/ingredient"
	planHandler "meal-planner/internal/api/handlers/plan"
	recipeHandler "meal-planner/internal/api/handlers/recipe"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/grocery"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 單一請求的處理時間上限
const timeoutDuration = 60 * time.Second

// Services 路由需要的服務
type Services struct {
	DB      health.Pinger
	Queue   *queue.Manager
	Recipes *recipe.Service
	Planner *planner.Service
	Grocery *grocery.Service
}

func (s Services) validate() error {
	switch {
	case s.DB == nil:
		return fmt.Errorf("database is required")
	case s.Recipes == nil:
		return fmt.Errorf("recipe service is required")
	case s.Planner == nil:
		return fmt.Errorf("planner service is required")
	case s.Grocery == nil:
		return fmt.Errorf("grocery service is required")
	}
	return nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if err := svc.validate(); err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		return nil, err
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Api-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 全局中間件：設置超時與設定
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Set(handlers.ConfigKey, cfg)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			status, resp := common.BuildErrorResponse(common.ErrGatewayTimeout, false)
			c.AbortWithStatusJSON(status, resp)
		}
	})

	router.NoRoute(func(c *gin.Context) {
		handlers.Error(c, common.ErrNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		handlers.Error(c, common.ErrMethodNotAllowed)
	})

	// 健康檢查路由
	healthH := health.NewHandler(cfg, svc.DB, svc.Queue)
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)

	recipes := recipeHandler.NewHandler(svc.Recipes)
	plans := planHandler.NewHandler(svc.Planner)
	groceries := groceryHandler.NewHandler(svc.Grocery)

	api := router.Group("/api/v1")
	api.Use(middleware.Deduplication(cfg.DedupWindow))
	{
		ingredientGroup := api.Group("/ingredients")
		{
			ingredientGroup.POST("/parse", ingredientHandler.HandleParse)
			ingredientGroup.POST("/aggregate", ingredientHandler.HandleAggregate)
		}

		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("", recipes.HandleList)
			recipeGroup.POST("", recipes.HandleCreate)
			recipeGroup.POST("/reparse", recipes.HandleReparse)
			recipeGroup.POST("/extract", recipes.HandleExtract)
			recipeGroup.GET("/:id", recipes.HandleGet)
			recipeGroup.PUT("/:id", recipes.HandleUpdate)
			recipeGroup.DELETE("/:id", recipes.HandleDelete)
		}

		planGroup := api.Group("/weekly-plan")
		{
			planGroup.GET("", plans.HandleGet)
			planGroup.POST("", plans.HandleAddMeal)
			planGroup.DELETE("/meals/:id", plans.HandleRemoveMeal)
		}

		groceryGroup := api.Group("/grocery-list")
		groceryGroup.Use(middleware.APIKey(cfg.Grocery.APIKey))
		{
			groceryGroup.GET("", groceries.HandleGet)
			groceryGroup.GET("/export", groceries.HandleExport)
			groceryGroup.GET("/overlay", groceries.HandleGetOverlay)
			groceryGroup.POST("/overlay", groceries.HandleSaveOverlay)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("grocery_api_key", cfg.Grocery.APIKey != ""),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
