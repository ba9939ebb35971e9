package bootstrap

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/docshelf/backend-go/internal/config"
	"github.com/docshelf/backend-go/internal/database"
	"github.com/docshelf/backend-go/internal/di"
	"github.com/docshelf/backend-go/internal/index"
	"github.com/docshelf/backend-go/internal/indexer"
	"github.com/docshelf/backend-go/internal/interfaces"
	"github.com/docshelf/backend-go/internal/logger"
	"github.com/docshelf/backend-go/internal/services"
)

// App 持有需要在关停时清理的生命周期资源
type App struct {
	cleanupTasks []func() error

	DB              interfaces.DatabaseInterface
	Storage         *index.Storage
	Queue           *indexer.EventQueue
	DocumentService *services.DocumentService
	SearchService   *services.SearchService
	AdminService    *services.IndexAdminService
}

var globalApp *App

// GetApp 获取全局应用实例
func GetApp() *App {
	return globalApp
}

// SetGlobalApp 设置全局应用实例
func SetGlobalApp(app *App) {
	globalApp = app
}

// Init 初始化配置、日志、数据库、索引与事件队列
func Init() (*App, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	config.WatchConfig(func(cfg *config.Config) {
		logger.Info("Configuration reloaded")
	})

	container := di.InitContainer()
	if err := di.RegisterProviders(container); err != nil {
		return nil, err
	}

	app := &App{}
	err := di.Invoke(func(
		db interfaces.DatabaseInterface,
		storage *index.Storage,
		queue *indexer.EventQueue,
		rebuilder *indexer.Rebuilder,
		documentService *services.DocumentService,
		searchService *services.SearchService,
		adminService *services.IndexAdminService,
	) error {
		app.cleanupTasks = append(app.cleanupTasks, db.Close)

		if d, ok := db.(*database.Database); ok {
			monitorCtx, stopMonitors := context.WithCancel(context.Background())
			go d.HealthChecker().Start(monitorCtx)
			d.Metrics().Start(monitorCtx)
			app.cleanupTasks = append(app.cleanupTasks, func() error {
				stopMonitors()
				d.HealthChecker().Stop()
				return nil
			})
		}

		// 启动时校验索引版本，不符时后台触发全量重建
		if err := index.EnsureReady(storage, rebuilder, logger.GetLogger()); err != nil {
			return err
		}
		app.cleanupTasks = append(app.cleanupTasks, storage.Close)

		queue.Start(context.Background())
		app.cleanupTasks = append(app.cleanupTasks, func() error {
			// 先排空队列再关索引（清理按逆序执行）
			queue.Stop()
			return nil
		})

		app.DB = db
		app.Storage = storage
		app.Queue = queue
		app.DocumentService = documentService
		app.SearchService = searchService
		app.AdminService = adminService
		return nil
	})
	if err != nil {
		return nil, err
	}

	SetGlobalApp(app)
	return app, nil
}

// Shutdown 逆序执行清理任务并刷新日志
func (a *App) Shutdown() {
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			log.Printf("Cleanup error: %v\n", err)
		}
	}
	logger.Sync()
}
