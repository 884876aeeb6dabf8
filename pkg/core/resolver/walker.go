package resolver

import (
	"github.com/LENAX/buildsys/pkg/core/graph"
)

// state 任务在一次解析中的状态：Unvisited -> OnActivePath -> Resolved
type state uint8

const (
	unvisited state = iota
	onActivePath
	resolved
)

// frame 显式栈帧：任务及下一个待访问依赖的下标
type frame struct {
	name string
	deps []string
	next int
}

// walker 单次解析的遍历状态，调用结束即丢弃
type walker struct {
	tasks   *graph.TaskGraph
	check   CycleCheck
	states  map[string]state
	emitted map[string]bool
	order   []string
	stack   []frame
}

func newWalker(tasks *graph.TaskGraph, check CycleCheck) *walker {
	return &walker{
		tasks:   tasks,
		check:   check,
		states:  make(map[string]state),
		emitted: make(map[string]bool),
		order:   make([]string, 0),
	}
}

// walk 以entry为起点做迭代式深度优先后序遍历
func (w *walker) walk(entry, referrer string, referrerKind graph.Kind) error {
	deps, ok := w.tasks.DependenciesOf(entry)
	if !ok {
		return &graph.UndefinedTaskError{Name: entry, ReferencedBy: referrer, ReferrerKind: referrerKind}
	}
	// legacy 模式下入口任务总会重新进入，其依赖会再次接受检查
	if w.states[entry] == resolved && w.check != CycleCheckLegacy {
		return nil
	}
	w.push(entry, deps)

	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]

		if top.next == len(top.deps) {
			name := top.name
			w.stack = w.stack[:len(w.stack)-1]
			w.states[name] = resolved
			if !w.emitted[name] {
				w.emitted[name] = true
				w.order = append(w.order, name)
			}
			continue
		}

		dep := top.deps[top.next]
		top.next++

		switch w.states[dep] {
		case onActivePath:
			return w.cycle(top.name, dep)
		case resolved:
			if w.check == CycleCheckLegacy {
				return w.cycle(top.name, dep)
			}
			continue
		}

		depDeps, ok := w.tasks.DependenciesOf(dep)
		if !ok {
			return &graph.UndefinedTaskError{Name: dep, ReferencedBy: top.name, ReferrerKind: graph.KindTask}
		}
		w.push(dep, depDeps)
	}
	return nil
}

func (w *walker) push(name string, deps []string) {
	w.states[name] = onActivePath
	w.stack = append(w.stack, frame{name: name, deps: deps})
}

// cycle 构造循环错误，依赖在当前路径上时附带循环路径
func (w *walker) cycle(task, dep string) error {
	err := &graph.CyclicDependencyError{Task: task, Dependency: dep}
	for i, f := range w.stack {
		if f.name != dep {
			continue
		}
		path := make([]string, 0, len(w.stack)-i+1)
		for _, g := range w.stack[i:] {
			path = append(path, g.name)
		}
		err.Path = append(path, dep)
		break
	}
	return err
}
