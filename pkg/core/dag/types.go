package dag

import (
	"github.com/LENAX/buildsys/pkg/core/graph"
)

// Node DAG节点信息（对外导出）
type Node struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"` // 直接依赖（声明顺序）
	Dependents   []string `json:"dependents"`   // 直接依赖该任务的任务（按名称排序）
}

// Report 任务图审计结果（对外导出）
type Report struct {
	Tasks     int                          `json:"tasks"`
	Roots     []string                     `json:"roots"`     // 没有依赖的任务
	Targets   []string                     `json:"targets"`   // 没有被任何任务依赖的任务
	Undefined []*graph.UndefinedTaskError  `json:"undefined"` // 引用了未定义任务的依赖边
	Cycle     *graph.CyclicDependencyError `json:"cycle,omitempty"`
	Error     string                       `json:"error,omitempty"` // 装载DAG失败的原因
}

// OK 判断任务图是否可以完整解析
func (r *Report) OK() bool {
	return len(r.Undefined) == 0 && r.Cycle == nil && r.Error == ""
}
