package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/docshelf/backend-go/internal/config"
	"github.com/docshelf/backend-go/internal/database"
	"github.com/docshelf/backend-go/internal/index"
	"github.com/docshelf/backend-go/internal/indexer"
	"github.com/docshelf/backend-go/internal/interfaces"
	"github.com/docshelf/backend-go/internal/logger"
	"github.com/docshelf/backend-go/internal/search"
	"github.com/docshelf/backend-go/internal/services"
)

// RegisterProviders 注册全部依赖提供者
func RegisterProviders(container *dig.Container) error {
	providers := []interface{}{
		func() (*config.Config, error) {
			cfg := config.GetAppConfig()
			if cfg == nil {
				return nil, fmt.Errorf("config not loaded")
			}
			return cfg, nil
		},
		func() *zap.Logger {
			return logger.GetLogger()
		},
		func(cfg *config.Config) (interfaces.DatabaseInterface, error) {
			return database.NewDatabase(cfg)
		},
		func(cfg *config.Config, log *zap.Logger) *index.Storage {
			return index.NewStorage(cfg.Index, log)
		},
		index.NewReaderManager,
		func(storage *index.Storage, log *zap.Logger) interfaces.IndexWriterInterface {
			return indexer.NewEntityIndexer(storage, log)
		},
		func(cfg *config.Config, writer interfaces.IndexWriterInterface, log *zap.Logger) *indexer.EventQueue {
			return indexer.NewEventQueue(cfg.Index.QueueSize, writer, log)
		},
		func(db interfaces.DatabaseInterface, storage *index.Storage, cfg *config.Config, log *zap.Logger) *indexer.Rebuilder {
			return indexer.NewRebuilder(db.GetDB(), storage, cfg.Index.RebuildBatchSize, log)
		},
		func(db interfaces.DatabaseInterface, readers *index.ReaderManager, cfg *config.Config, log *zap.Logger) *search.Resolver {
			return search.NewResolver(db.GetDB(), readers, cfg.Search, log)
		},
		services.NewDocumentService,
		services.NewSearchService,
		services.NewIndexAdminService,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}
	return nil
}
