package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/LENAX/buildsys/pkg/api/handler"
	"github.com/LENAX/buildsys/pkg/api/middleware"
	"github.com/LENAX/buildsys/pkg/catalog"
	"github.com/LENAX/buildsys/pkg/metrics"
)

// SetupRouter 设置路由
func SetupRouter(cat *catalog.Catalog, m *metrics.Metrics, logger *logrus.Logger, version string) *gin.Engine {
	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 全局中间件
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))

	// 创建handlers
	taskHandler := handler.NewTaskHandler(cat)
	buildHandler := handler.NewBuildHandler(cat, logger)
	auditHandler := handler.NewAuditHandler(cat)
	healthHandler := handler.NewHealthHandler(cat, version)

	// 健康检查与指标路由（不带前缀）
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		tasks := v1.Group("/tasks")
		{
			tasks.GET("", taskHandler.List)
			tasks.GET("/:name", taskHandler.Get)
		}

		builds := v1.Group("/builds")
		{
			builds.GET("", buildHandler.List)
			builds.GET("/:name", buildHandler.Get)
		}

		v1.GET("/audit", auditHandler.Audit)
	}

	return router
}
