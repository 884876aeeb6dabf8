package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/buildsys/pkg/api/dto"
	"github.com/LENAX/buildsys/pkg/catalog"
	"github.com/LENAX/buildsys/pkg/core/dag"
)

// AuditHandler 任务图审计处理器
type AuditHandler struct {
	catalog *catalog.Catalog
}

// NewAuditHandler 创建AuditHandler
func NewAuditHandler(cat *catalog.Catalog) *AuditHandler {
	return &AuditHandler{catalog: cat}
}

// Audit 审计当前任务图
// GET /api/v1/audit
func (h *AuditHandler) Audit(c *gin.Context) {
	snap := h.catalog.Snapshot()
	if snap == nil {
		abortWithError(c, catalog.ErrNotLoaded)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dag.Audit(snap.Tasks)))
}
