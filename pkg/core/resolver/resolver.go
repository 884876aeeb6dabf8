// Package resolver 将构建的入口任务展开为按依赖排序、去重后的任务列表。
//
// 解析是只读的一次性计算：每次调用使用独立的遍历状态，
// 任务图和构建图可以在多个goroutine之间共享。
package resolver

import (
	"fmt"

	"github.com/LENAX/buildsys/pkg/core/graph"
)

// CycleCheck 循环检测模式
type CycleCheck int

const (
	// CycleCheckPath 只有回到当前递归路径上的任务才算循环（三色标记）
	CycleCheckPath CycleCheck = iota
	// CycleCheckLegacy 兼容旧版本：同一次解析中通过依赖边再次遇到任何已进入过的任务都视为循环，
	// 菱形依赖（A依赖B和C，B和C都依赖D）也会被拒绝
	CycleCheckLegacy
)

// String 返回模式名称
func (c CycleCheck) String() string {
	switch c {
	case CycleCheckPath:
		return "path"
	case CycleCheckLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("CycleCheck(%d)", int(c))
	}
}

// ParseCycleCheck 解析模式名称，空字符串为默认的 path 模式
func ParseCycleCheck(s string) (CycleCheck, error) {
	switch s {
	case "", "path":
		return CycleCheckPath, nil
	case "legacy":
		return CycleCheckLegacy, nil
	default:
		return CycleCheckPath, fmt.Errorf("unknown cycle check mode %q (expected path or legacy)", s)
	}
}

// Options 解析选项
type Options struct {
	CycleCheck CycleCheck
}

// Resolve 解析构建，返回按依赖排序的任务列表（对外导出）
// 每个任务只出现一次，且所有依赖都排在它前面
func Resolve(buildName string, builds *graph.BuildGraph, tasks *graph.TaskGraph) ([]string, error) {
	return ResolveWithOptions(buildName, builds, tasks, Options{})
}

// ResolveWithOptions 带选项解析构建
func ResolveWithOptions(buildName string, builds *graph.BuildGraph, tasks *graph.TaskGraph, opts Options) ([]string, error) {
	entries, err := builds.EntryTasks(buildName)
	if err != nil {
		return nil, err
	}
	return resolveEntries(entries, buildName, graph.KindBuild, tasks, opts)
}

// ResolveTasks 以任意入口任务列表进行解析，用于单个任务的依赖展开
func ResolveTasks(entries []string, tasks *graph.TaskGraph, opts Options) ([]string, error) {
	return resolveEntries(entries, "", "", tasks, opts)
}

func resolveEntries(entries []string, referrer string, referrerKind graph.Kind, tasks *graph.TaskGraph, opts Options) ([]string, error) {
	w := newWalker(tasks, opts.CycleCheck)
	for _, entry := range entries {
		if err := w.walk(entry, referrer, referrerKind); err != nil {
			return nil, err
		}
	}
	return w.order, nil
}
