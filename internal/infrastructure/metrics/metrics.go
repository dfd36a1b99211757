// Package metrics Prometheus 指标定义
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DevLoopIterations 开发循环迭代计数
	DevLoopIterations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conceptlab_devloop_iterations_total",
			Help: "Total number of development loop iterations executed",
		},
		[]string{"stage"},
	)

	// DevLoopFailures 开发循环失败计数
	DevLoopFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conceptlab_devloop_failures_total",
			Help: "Total number of development loop iterations that failed",
		},
		[]string{"stage"},
	)

	// DeliverableCompilations 可交付文档编译计数
	DeliverableCompilations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conceptlab_deliverable_compilations_total",
			Help: "Total number of deliverable compilations",
		},
	)

	// CompilationDuration 编译耗时
	CompilationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "conceptlab_compilation_duration_seconds",
			Help: "Duration of deliverable compilation in seconds",
		},
	)

	// ActiveSessions 活跃开发会话数量
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conceptlab_active_sessions",
			Help: "Number of development sessions currently running",
		},
	)

	// EnhancementRequests 增强请求计数
	EnhancementRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conceptlab_enhancement_requests_total",
			Help: "Total number of enhancement requests by outcome",
		},
		[]string{"outcome"},
	)
)
