// Package dag 对完整任务图做全局审计：未定义引用、循环依赖、根任务与终端任务。
//
// 审计通过后任务图会被装载进 go-dag，用于反向查询（谁依赖了某个任务）。
package dag

import (
	"fmt"
	"sort"

	godag "github.com/begmaroman/go-dag"

	"github.com/LENAX/buildsys/pkg/core/graph"
)

// TaskDAG 基于 go-dag 的任务图（对外导出）
// 边方向：依赖 -> 依赖它的任务（前置Task -> 后置Task）
// 顶点以任务名作为ID和值，保证每个顶点的哈希唯一
type TaskDAG struct {
	tasks *graph.TaskGraph
	d     *godag.DAG[string]
}

// BuildDAG 从任务图构建DAG（对外导出）
// 存在未定义引用或循环依赖时返回对应的类型化错误
func BuildDAG(tasks *graph.TaskGraph) (*TaskDAG, error) {
	if undefined := findUndefined(tasks); len(undefined) > 0 {
		return nil, undefined[0]
	}

	// 1. 先用三色DFS一次性检测循环，避免逐条AddEdge时的重复检查
	if cyc := detectCycle(tasks); cyc != nil {
		return nil, cyc
	}

	// 2. 添加所有节点
	d := godag.NewDAG[string]()
	for _, name := range tasks.Names() {
		if err := d.AddVertexByID(name, name); err != nil {
			return nil, fmt.Errorf("添加节点失败: Task=%s, Error=%w", name, err)
		}
	}

	// 3. 添加所有边（已确认无环）
	for _, name := range tasks.Names() {
		deps, _ := tasks.DependenciesOf(name)
		seen := make(map[string]bool, len(deps))
		for _, dep := range deps {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if err := d.AddEdge(dep, name); err != nil {
				return nil, fmt.Errorf("添加边失败: %s -> %s, Error=%w", dep, name, err)
			}
		}
	}

	return &TaskDAG{tasks: tasks, d: d}, nil
}

// Roots 返回没有依赖的任务（按名称排序）
func (t *TaskDAG) Roots() []string {
	return sortedKeys(t.d.GetRoots())
}

// Targets 返回没有被任何任务依赖的任务（按名称排序）
func (t *TaskDAG) Targets() []string {
	return sortedKeys(t.d.GetLeaves())
}

// Dependents 返回直接依赖name的任务（按名称排序）
func (t *TaskDAG) Dependents(name string) ([]string, error) {
	if !t.tasks.Has(name) {
		return nil, &graph.NotFoundError{Kind: graph.KindTask, Name: name}
	}
	children, err := t.d.GetChildren(name)
	if err != nil {
		return nil, fmt.Errorf("查询子节点失败: %w", err)
	}
	return sortedKeys(children), nil
}

// Node 返回任务的依赖与被依赖信息
func (t *TaskDAG) Node(name string) (*Node, error) {
	deps, err := t.tasks.Dependencies(name)
	if err != nil {
		return nil, err
	}
	dependents, err := t.Dependents(name)
	if err != nil {
		return nil, err
	}
	return &Node{Name: name, Dependencies: deps, Dependents: dependents}, nil
}

// Audit 审计整个任务图（对外导出）
// 收集全部未定义引用和第一个发现的循环；两者都不存在时再装载DAG计算根任务与终端任务，
// 装载失败记录在 Error 中
func Audit(tasks *graph.TaskGraph) *Report {
	report := &Report{
		Tasks:     tasks.Len(),
		Roots:     make([]string, 0),
		Targets:   make([]string, 0),
		Undefined: findUndefined(tasks),
		Cycle:     detectCycle(tasks),
	}
	if !report.OK() {
		return report
	}

	d, err := BuildDAG(tasks)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Roots = d.Roots()
	report.Targets = d.Targets()
	return report
}

// findUndefined 按声明顺序找出所有引用了未定义任务的依赖
func findUndefined(tasks *graph.TaskGraph) []*graph.UndefinedTaskError {
	undefined := make([]*graph.UndefinedTaskError, 0)
	for _, name := range tasks.Names() {
		deps, _ := tasks.DependenciesOf(name)
		for _, dep := range deps {
			if !tasks.Has(dep) {
				undefined = append(undefined, &graph.UndefinedTaskError{
					Name:         dep,
					ReferencedBy: name,
					ReferrerKind: graph.KindTask,
				})
			}
		}
	}
	return undefined
}

// 三色标记
const (
	white = iota // 未访问
	gray         // 正在访问（在当前路径上）
	black        // 已访问
)

// frame 显式栈帧：任务及下一个待访问依赖的下标
type frame struct {
	name string
	deps []string
	next int
}

// detectCycle 使用三色标记法检测循环，按声明顺序遍历，结果确定
// 未定义的依赖按无依赖处理
func detectCycle(tasks *graph.TaskGraph) *graph.CyclicDependencyError {
	color := make(map[string]int, tasks.Len())

	for _, start := range tasks.Names() {
		if color[start] != white {
			continue
		}
		deps, _ := tasks.DependenciesOf(start)
		color[start] = gray
		stack := []frame{{name: start, deps: deps}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.deps) {
				color[top.name] = black
				stack = stack[:len(stack)-1]
				continue
			}

			dep := top.deps[top.next]
			top.next++

			switch color[dep] {
			case white:
				depDeps, _ := tasks.DependenciesOf(dep)
				color[dep] = gray
				stack = append(stack, frame{name: dep, deps: depDeps})
			case gray:
				// 后向边：栈中从 dep 到栈顶即为循环路径
				return &graph.CyclicDependencyError{
					Task:       top.name,
					Dependency: dep,
					Path:       cyclePath(stack, dep),
				}
			}
		}
	}
	return nil
}

// cyclePath 返回 dep -> ... -> 栈顶 -> dep
func cyclePath(stack []frame, dep string) []string {
	for i, f := range stack {
		if f.name != dep {
			continue
		}
		path := make([]string, 0, len(stack)-i+1)
		for _, g := range stack[i:] {
			path = append(path, g.name)
		}
		return append(path, dep)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
