// Package export 把构建的解析结果导出为 Graphviz DOT
package export

import (
	"errors"
	"fmt"
	"io"

	dgraph "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/LENAX/buildsys/pkg/core/graph"
	"github.com/LENAX/buildsys/pkg/core/resolver"
)

// Options 导出选项
type Options struct {
	Resolver resolver.Options
	// RankDir DOT 布局方向，为空时使用 Graphviz 默认（TB）
	RankDir string
}

// BuildSubgraph 解析构建并返回只包含已解析任务的子图（对外导出）
// 边 A -> B 表示 A 依赖 B；入口任务带 style=bold 属性
func BuildSubgraph(buildName string, builds *graph.BuildGraph, tasks *graph.TaskGraph, opts Options) (dgraph.Graph[string, string], error) {
	order, err := resolver.ResolveWithOptions(buildName, builds, tasks, opts.Resolver)
	if err != nil {
		return nil, err
	}
	entries, err := builds.EntryTasks(buildName)
	if err != nil {
		return nil, err
	}
	entry := make(map[string]bool, len(entries))
	for _, name := range entries {
		entry[name] = true
	}

	g := dgraph.New(dgraph.StringHash, dgraph.Directed(), dgraph.Acyclic())

	// 1. 按解析顺序添加节点，记录执行序号
	for i, name := range order {
		attrs := []func(*dgraph.VertexProperties){
			dgraph.VertexAttribute("label", fmt.Sprintf("%d. %s", i+1, name)),
		}
		if entry[name] {
			attrs = append(attrs, dgraph.VertexAttribute("style", "bold"))
		}
		if err := g.AddVertex(name, attrs...); err != nil {
			return nil, fmt.Errorf("添加节点失败: Task=%s, Error=%w", name, err)
		}
	}

	// 2. 添加依赖边，重复声明的依赖只保留一条
	for _, name := range order {
		deps, _ := tasks.DependenciesOf(name)
		for _, dep := range deps {
			err := g.AddEdge(name, dep)
			if err != nil && !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("添加边失败: %s -> %s, Error=%w", name, dep, err)
			}
		}
	}
	return g, nil
}

// WriteDOT 解析构建并把子图以 DOT 格式写入 w（对外导出）
// 解析错误原样返回，w 中不会写入任何内容
func WriteDOT(w io.Writer, buildName string, builds *graph.BuildGraph, tasks *graph.TaskGraph, opts Options) error {
	g, err := BuildSubgraph(buildName, builds, tasks, opts)
	if err != nil {
		return err
	}

	if opts.RankDir != "" {
		return draw.DOT(g, w, draw.GraphAttribute("rankdir", opts.RankDir))
	}
	return draw.DOT(g, w)
}
