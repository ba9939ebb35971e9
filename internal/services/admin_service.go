package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/docshelf/backend-go/internal/index"
	"github.com/docshelf/backend-go/internal/indexer"
)

// IndexAdminService 索引管理服务
type IndexAdminService struct {
	storage   *index.Storage
	queue     *indexer.EventQueue
	rebuilder *indexer.Rebuilder
	logger    *zap.Logger
}

// IndexStatus 索引状态
type IndexStatus struct {
	RecordCount uint64                `json:"record_count"`
	QueueDepth  int                   `json:"queue_depth"`
	Rebuild     indexer.RebuildStatus `json:"rebuild"`
}

// NewIndexAdminService 创建索引管理服务
func NewIndexAdminService(storage *index.Storage, queue *indexer.EventQueue, rebuilder *indexer.Rebuilder, logger *zap.Logger) *IndexAdminService {
	return &IndexAdminService{
		storage:   storage,
		queue:     queue,
		rebuilder: rebuilder,
		logger:    logger,
	}
}

// TriggerRebuild 触发全量重建：调用同步返回，重建工作在后台执行
func (s *IndexAdminService) TriggerRebuild(ctx context.Context) indexer.RebuildStatus {
	status := s.rebuilder.Status()
	if status.Running {
		s.logger.Info("Index rebuild already running, request ignored")
		return status
	}

	s.logger.Info("Index rebuild triggered")
	go func() {
		if err := s.rebuilder.Rebuild(context.Background()); err != nil {
			s.logger.Error("Triggered index rebuild failed", zap.Error(err))
		}
	}()

	status.Running = true
	return status
}

// Status 当前索引状态
func (s *IndexAdminService) Status() IndexStatus {
	status := IndexStatus{
		QueueDepth: s.queue.Depth(),
		Rebuild:    s.rebuilder.Status(),
	}

	if count, err := s.storage.DocCount(); err == nil {
		status.RecordCount = count
	}
	return status
}
