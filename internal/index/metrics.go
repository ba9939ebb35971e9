package index

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 索引子系统的Prometheus指标
var (
	indexOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docshelf_index_operations_total",
			Help: "Total number of index mutations by operation and status",
		},
		[]string{"operation", "status"},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docshelf_index_queue_depth",
			Help: "Current number of pending entity change events",
		},
	)

	eventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docshelf_index_events_dropped_total",
			Help: "Total number of entity change events dropped due to a full queue",
		},
	)

	rebuildRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docshelf_index_rebuild_runs_total",
			Help: "Total number of index rebuild runs by status",
		},
		[]string{"status"},
	)

	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docshelf_search_duration_seconds",
			Help:    "Duration of hybrid search requests",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// ObserveOperation 记录一次索引变更
func ObserveOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	indexOperations.WithLabelValues(operation, status).Inc()
}

// SetQueueDepth 更新事件队列深度
func SetQueueDepth(depth int) {
	queueDepth.Set(float64(depth))
}

// ObserveDroppedEvent 记录一次因队列满而丢弃的事件
func ObserveDroppedEvent() {
	eventsDropped.Inc()
}

// ObserveRebuild 记录一次索引重建
func ObserveRebuild(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	rebuildRuns.WithLabelValues(status).Inc()
}

// ObserveSearch 记录一次搜索耗时
func ObserveSearch(elapsed time.Duration) {
	searchDuration.Observe(elapsed.Seconds())
}
