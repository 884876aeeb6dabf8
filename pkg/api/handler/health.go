package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/buildsys/pkg/api/dto"
	"github.com/LENAX/buildsys/pkg/catalog"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	catalog   *catalog.Catalog
	version   string
	startTime time.Time
}

// NewHealthHandler 创建HealthHandler
func NewHealthHandler(cat *catalog.Catalog, version string) *HealthHandler {
	return &HealthHandler{
		catalog:   cat,
		version:   version,
		startTime: time.Now(),
	}
}

// Health 健康检查
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    formatDuration(uptime),
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// Ready 就绪检查，定义加载完成后才就绪
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	snap := h.catalog.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(503, catalog.ErrNotLoaded.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ReadyResponse{
		Status:   "ready",
		Tasks:    snap.Tasks.Len(),
		Builds:   snap.Builds.Len(),
		LoadedAt: h.catalog.LoadedAt().Format(time.RFC3339),
	}))
}

// formatDuration 格式化时长
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
