package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/buildsys/pkg/api/dto"
	"github.com/LENAX/buildsys/pkg/catalog"
	"github.com/LENAX/buildsys/pkg/core/dag"
	"github.com/LENAX/buildsys/pkg/core/graph"
)

// TaskHandler Task查询处理器
type TaskHandler struct {
	catalog *catalog.Catalog
}

// NewTaskHandler 创建TaskHandler
func NewTaskHandler(cat *catalog.Catalog) *TaskHandler {
	return &TaskHandler{catalog: cat}
}

// List 按声明顺序列出所有任务
// GET /api/v1/tasks
func (h *TaskHandler) List(c *gin.Context) {
	snap := h.catalog.Snapshot()
	if snap == nil {
		abortWithError(c, catalog.ErrNotLoaded)
		return
	}

	items := make([]dto.TaskSummary, 0, snap.Tasks.Len())
	for _, t := range snap.Tasks.Tasks() {
		items = append(items, dto.TaskSummary{Name: t.Name, Dependencies: t.Dependencies})
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[dto.TaskSummary]{
		Total: len(items),
		Items: items,
	}))
}

// Get 查询任务详情：直接依赖、被依赖关系和展开后的执行顺序
// GET /api/v1/tasks/:name
func (h *TaskHandler) Get(c *gin.Context) {
	name := c.Param("name")

	snap := h.catalog.Snapshot()
	if snap == nil {
		abortWithError(c, catalog.ErrNotLoaded)
		return
	}
	task, err := snap.Tasks.Lookup(name)
	if err != nil {
		abortWithError(c, err)
		return
	}

	order, err := h.catalog.ResolveTaskIn(snap, name)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.TaskDetail{
		TaskSummary: dto.TaskSummary{Name: task.Name, Dependencies: task.Dependencies},
		Dependents:  dependentsOf(snap.Tasks, name),
		Order:       order,
	}))
}

// dependentsOf 找出直接依赖name的任务（按名称排序）
// 任务图能装载为DAG时直接查询，含有环或未定义引用时退回扫描
func dependentsOf(tasks *graph.TaskGraph, name string) []string {
	if d, err := dag.BuildDAG(tasks); err == nil {
		if node, err := d.Node(name); err == nil {
			return node.Dependents
		}
	}

	dependents := make([]string, 0)
	for _, t := range tasks.Tasks() {
		for _, dep := range t.Dependencies {
			if dep == name {
				dependents = append(dependents, t.Name)
				break
			}
		}
	}
	sort.Strings(dependents)
	return dependents
}
