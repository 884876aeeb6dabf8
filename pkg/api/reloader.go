package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/LENAX/buildsys/pkg/catalog"
	"github.com/LENAX/buildsys/pkg/metrics"
	"github.com/LENAX/buildsys/pkg/source"
)

// Reloader 按 cron 表达式定时从定义源重新加载快照
// 加载失败时保留旧快照
type Reloader struct {
	src      source.Source
	catalog  *catalog.Catalog
	metrics  *metrics.Metrics
	logger   *logrus.Logger
	timeout  time.Duration
	cron     *cron.Cron
	mu       sync.Mutex // 串行化重新加载
	schedule string
}

// NewReloader 创建Reloader，schedule 为标准5段cron表达式
func NewReloader(src source.Source, cat *catalog.Catalog, m *metrics.Metrics, logger *logrus.Logger, schedule string) (*Reloader, error) {
	r := &Reloader{
		src:      src,
		catalog:  cat,
		metrics:  m,
		logger:   logger,
		timeout:  30 * time.Second,
		schedule: schedule,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
	}
	if _, err := r.cron.AddFunc(schedule, r.runScheduled); err != nil {
		return nil, fmt.Errorf("无效的cron表达式: %s, %w", schedule, err)
	}
	return r, nil
}

// Start 启动定时任务
func (r *Reloader) Start() {
	r.logger.WithField("schedule", r.schedule).Info("定时重新加载已启动")
	r.cron.Start()
}

// Stop 停止定时任务，等待正在执行的加载完成或ctx到期
func (r *Reloader) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (r *Reloader) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	_ = r.Reload(ctx)
}

// Reload 立即重新加载一次（对外导出）
// 成功时整体替换目录中的快照，失败时保留旧快照并返回错误
func (r *Reloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.logger.WithField("source", r.src.Describe())
	snap, err := r.src.Load(ctx)
	r.metrics.ObserveReload(err)
	if err != nil {
		entry.WithError(err).Error("重新加载定义失败，保留当前快照")
		return err
	}

	r.catalog.Replace(snap)
	entry.WithFields(logrus.Fields{
		"tasks":  snap.Tasks.Len(),
		"builds": snap.Builds.Len(),
	}).Info("定义已重新加载")
	return nil
}
