// Package metrics 解析与重新加载相关的 Prometheus 指标
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LENAX/buildsys/pkg/core/graph"
)

const namespace = "buildsys"

// 解析结果标签值
const (
	OutcomeOK            = "ok"
	OutcomeNotFound      = "not_found"
	OutcomeUndefinedTask = "undefined_task"
	OutcomeCyclic        = "cyclic"
	OutcomeError         = "error"
)

// Metrics 指标集合（对外导出）
// 每个实例使用独立的 Registry，可以在测试中重复创建
type Metrics struct {
	registry *prometheus.Registry

	resolutions        *prometheus.CounterVec
	resolutionDuration prometheus.Histogram
	reloads            *prometheus.CounterVec
	definitions        *prometheus.GaugeVec
}

// New 创建并注册所有指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Number of build resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		resolutionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolution_duration_seconds",
				Help:      "Build resolution time in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
			},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Number of definition reloads by result.",
			},
			[]string{"result"}, // "success" or "error"
		),
		definitions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "definitions",
				Help:      "Number of loaded definitions by kind.",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		m.resolutions,
		m.resolutionDuration,
		m.reloads,
		m.definitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResolution 记录一次解析的耗时与结果
func (m *Metrics) ObserveResolution(elapsed time.Duration, err error) {
	m.resolutionDuration.Observe(elapsed.Seconds())
	m.resolutions.WithLabelValues(Outcome(err)).Inc()
}

// ObserveReload 记录一次重新加载
func (m *Metrics) ObserveReload(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}

// SetDefinitions 记录当前快照中的定义数量
func (m *Metrics) SetDefinitions(snap *graph.Snapshot) {
	m.definitions.WithLabelValues(string(graph.KindTask)).Set(float64(snap.Tasks.Len()))
	m.definitions.WithLabelValues(string(graph.KindBuild)).Set(float64(snap.Builds.Len()))
}

// Outcome 把解析错误映射为标签值
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, graph.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, graph.ErrUndefinedTask):
		return OutcomeUndefinedTask
	case errors.Is(err, graph.ErrCyclicDependency):
		return OutcomeCyclic
	default:
		return OutcomeError
	}
}
