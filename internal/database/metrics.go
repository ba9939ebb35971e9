package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MetricsCollector 数据库指标收集器
type MetricsCollector struct {
	db              *sql.DB
	logger          *logrus.Logger
	collectInterval time.Duration

	connectionsGauge *prometheus.GaugeVec
	queriesCounter   *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector(db *sql.DB, logger *logrus.Logger) *MetricsCollector {
	mc := &MetricsCollector{
		db:              db,
		logger:          logger,
		collectInterval: 15 * time.Second,
	}
	mc.registerMetrics()
	return mc
}

// registerMetrics 注册Prometheus指标
func (mc *MetricsCollector) registerMetrics() {
	mc.connectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docshelf_db_connections",
			Help: "Number of database connections in different states",
		},
		[]string{"state"},
	)

	mc.queriesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docshelf_db_queries_total",
			Help: "Total number of database queries executed",
		},
		[]string{"operation", "status"},
	)

	mc.queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docshelf_db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
}

// Start 开始周期性收集连接池指标
func (mc *MetricsCollector) Start(ctx context.Context) {
	mc.logger.Info("Starting database metrics collection")

	go func() {
		ticker := time.NewTicker(mc.collectInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mc.collectPoolStats()
			}
		}
	}()
}

// collectPoolStats 收集连接池统计信息
func (mc *MetricsCollector) collectPoolStats() {
	stats := mc.db.Stats()

	mc.connectionsGauge.WithLabelValues("idle").Set(float64(stats.Idle))
	mc.connectionsGauge.WithLabelValues("in_use").Set(float64(stats.InUse))
	mc.connectionsGauge.WithLabelValues("open").Set(float64(stats.OpenConnections))
	mc.connectionsGauge.WithLabelValues("wait_count").Set(float64(stats.WaitCount))

	mc.logger.WithFields(logrus.Fields{
		"idle":   stats.Idle,
		"in_use": stats.InUse,
		"open":   stats.OpenConnections,
	}).Debug("Database connection pool stats collected")
}

const queryStartKey = "docshelf:query_start"

// RegisterCallbacks 挂载gorm回调，按操作类型记录查询次数与耗时
func (mc *MetricsCollector) RegisterCallbacks(db *gorm.DB) error {
	before := func(db *gorm.DB) {
		db.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			v, ok := db.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			mc.RecordQuery(operation, time.Since(start), db.Error)
		}
	}

	if err := db.Callback().Create().Before("gorm:create").Register("docshelf:metrics_create_start", before); err != nil {
		return err
	}
	if err := db.Callback().Create().After("gorm:create").Register("docshelf:metrics_create_done", after("create")); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("docshelf:metrics_query_start", before); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("docshelf:metrics_query_done", after("query")); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("docshelf:metrics_update_start", before); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("docshelf:metrics_update_done", after("update")); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("docshelf:metrics_delete_start", before); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("docshelf:metrics_delete_done", after("delete")); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("docshelf:metrics_row_start", before); err != nil {
		return err
	}
	return db.Callback().Row().After("gorm:row").Register("docshelf:metrics_row_done", after("row"))
}

// RecordQuery 记录查询操作
func (mc *MetricsCollector) RecordQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	mc.queriesCounter.WithLabelValues(operation, status).Inc()
	mc.queryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// GetStats 获取当前连接池统计信息
func (mc *MetricsCollector) GetStats() sql.DBStats {
	return mc.db.Stats()
}
