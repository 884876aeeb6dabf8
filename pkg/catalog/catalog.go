// Package catalog 持有当前发布的定义快照，供并发请求读取
package catalog

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/LENAX/buildsys/pkg/core/graph"
	"github.com/LENAX/buildsys/pkg/core/resolver"
	"github.com/LENAX/buildsys/pkg/metrics"
)

// ErrNotLoaded 尚未发布任何快照
var ErrNotLoaded = errors.New("definitions not loaded")

// published 一次发布：快照与发布时间
type published struct {
	snap     *graph.Snapshot
	loadedAt time.Time
}

// Catalog 定义目录（对外导出）
// 已发布的快照不再修改，重新加载时整体替换指针
type Catalog struct {
	current atomic.Pointer[published]
	opts    resolver.Options
	metrics *metrics.Metrics
}

// New 创建目录，snap 可以为 nil（稍后通过 Replace 发布）
func New(snap *graph.Snapshot, opts resolver.Options, m *metrics.Metrics) *Catalog {
	c := &Catalog{opts: opts, metrics: m}
	if snap != nil {
		c.Replace(snap)
	}
	return c
}

// Snapshot 返回当前快照，未加载时返回 nil
func (c *Catalog) Snapshot() *graph.Snapshot {
	if p := c.current.Load(); p != nil {
		return p.snap
	}
	return nil
}

// LoadedAt 返回当前快照的发布时间
func (c *Catalog) LoadedAt() time.Time {
	if p := c.current.Load(); p != nil {
		return p.loadedAt
	}
	return time.Time{}
}

// Replace 发布新快照
func (c *Catalog) Replace(snap *graph.Snapshot) {
	c.current.Store(&published{snap: snap, loadedAt: time.Now()})
	c.metrics.SetDefinitions(snap)
}

// Resolve 在当前快照上解析构建，并记录指标
func (c *Catalog) Resolve(buildName string) ([]string, error) {
	return c.ResolveIn(c.Snapshot(), buildName)
}

// ResolveIn 在指定快照上解析构建，同一请求内的多次读取应使用同一个快照
func (c *Catalog) ResolveIn(snap *graph.Snapshot, buildName string) ([]string, error) {
	if snap == nil {
		return nil, ErrNotLoaded
	}

	start := time.Now()
	order, err := resolver.ResolveWithOptions(buildName, snap.Builds, snap.Tasks, c.opts)
	c.metrics.ObserveResolution(time.Since(start), err)
	return order, err
}

// ResolveTask 在当前快照上展开单个任务的依赖
func (c *Catalog) ResolveTask(name string) ([]string, error) {
	return c.ResolveTaskIn(c.Snapshot(), name)
}

// ResolveTaskIn 在指定快照上展开单个任务的依赖
func (c *Catalog) ResolveTaskIn(snap *graph.Snapshot, name string) ([]string, error) {
	if snap == nil {
		return nil, ErrNotLoaded
	}
	if !snap.Tasks.Has(name) {
		return nil, &graph.NotFoundError{Kind: graph.KindTask, Name: name}
	}
	return resolver.ResolveTasks([]string{name}, snap.Tasks, c.opts)
}
