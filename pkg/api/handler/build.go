package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/LENAX/buildsys/pkg/api/dto"
	"github.com/LENAX/buildsys/pkg/api/middleware"
	"github.com/LENAX/buildsys/pkg/catalog"
)

// BuildHandler Build查询处理器
type BuildHandler struct {
	catalog *catalog.Catalog
	logger  *logrus.Logger
}

// NewBuildHandler 创建BuildHandler
func NewBuildHandler(cat *catalog.Catalog, logger *logrus.Logger) *BuildHandler {
	return &BuildHandler{catalog: cat, logger: logger}
}

// List 按声明顺序列出所有构建
// GET /api/v1/builds
func (h *BuildHandler) List(c *gin.Context) {
	snap := h.catalog.Snapshot()
	if snap == nil {
		abortWithError(c, catalog.ErrNotLoaded)
		return
	}

	items := make([]dto.BuildSummary, 0, snap.Builds.Len())
	for _, b := range snap.Builds.Builds() {
		items = append(items, dto.BuildSummary{Name: b.Name, Tasks: b.Tasks})
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[dto.BuildSummary]{
		Total: len(items),
		Items: items,
	}))
}

// Get 解析构建并返回执行顺序
// GET /api/v1/builds/:name
func (h *BuildHandler) Get(c *gin.Context) {
	name := c.Param("name")

	snap := h.catalog.Snapshot()
	if snap == nil {
		abortWithError(c, catalog.ErrNotLoaded)
		return
	}
	build, err := snap.Builds.Lookup(name)
	if err != nil {
		abortWithError(c, err)
		return
	}

	order, err := h.catalog.ResolveIn(snap, name)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": middleware.RequestIDFrom(c),
			"build":      name,
		}).WithError(err).Warn("构建解析失败")
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.BuildDetail{
		BuildSummary: dto.BuildSummary{Name: build.Name, Tasks: build.Tasks},
		Order:        order,
	}))
}
