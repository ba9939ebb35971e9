package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/docshelf/backend-go/internal/config"
	"github.com/docshelf/backend-go/internal/interfaces"
	"github.com/docshelf/backend-go/internal/models"
)

// Database 数据库包装器，实现DatabaseInterface
type Database struct {
	db            *gorm.DB
	sqlDB         *sql.DB
	healthChecker *HealthChecker
	metrics       *MetricsCollector
}

// NewDatabase 创建数据库实例并执行自动迁移
func NewDatabase(cfg *config.Config) (interfaces.DatabaseInterface, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	d := &Database{
		db:            db,
		sqlDB:         sqlDB,
		healthChecker: NewHealthChecker(sqlDB, logger),
		metrics:       NewMetricsCollector(sqlDB, logger),
	}
	if err := d.metrics.RegisterCallbacks(db); err != nil {
		return nil, fmt.Errorf("failed to register metrics callbacks: %w", err)
	}
	return d, nil
}

// autoMigrate 自动迁移检索子系统相关表（按外键依赖顺序）
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.UserGroup{},
		&models.Document{},
		&models.DocFile{},
		&models.Tag{},
		&models.DocumentTag{},
		&models.DocumentACL{},
		&models.TagACL{},
		&models.DocumentShare{},
		&models.Route{},
		&models.RouteStep{},
	)
}

// GetDB 获取数据库连接
func (d *Database) GetDB() *gorm.DB {
	return d.db
}

// Close 关闭数据库连接
func (d *Database) Close() error {
	if d.sqlDB == nil {
		return nil
	}
	return d.sqlDB.Close()
}

// HealthCheck 健康检查
func (d *Database) HealthCheck() error {
	if d.healthChecker != nil && d.healthChecker.IsHealthy() {
		return nil
	}
	if d.sqlDB == nil {
		return fmt.Errorf("database connection is nil")
	}
	return d.sqlDB.Ping()
}

// Metrics 获取指标收集器
func (d *Database) Metrics() *MetricsCollector {
	return d.metrics
}

// HealthChecker 获取健康检查器
func (d *Database) HealthChecker() *HealthChecker {
	return d.healthChecker
}
