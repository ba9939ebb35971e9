package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/docshelf/backend-go/internal/errors"
	"github.com/docshelf/backend-go/internal/index"
	"github.com/docshelf/backend-go/internal/models"
)

// RebuildStatus 重建状态快照
type RebuildStatus struct {
	Running   bool      `json:"running"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Rebuilder 索引重建编排器
// 先清空索引再从关系库全量回填，幂等，可在服务运行期间调用
// 清空与回填不是一个事务，重建期间的并发搜索可能短暂看到空结果
type Rebuilder struct {
	db        *gorm.DB
	storage   *index.Storage
	batchSize int
	logger    *zap.Logger

	runMu sync.Mutex

	stateMu   sync.RWMutex
	running   bool
	lastRun   time.Time
	lastError error
}

// NewRebuilder 创建重建编排器
func NewRebuilder(db *gorm.DB, storage *index.Storage, batchSize int, logger *zap.Logger) *Rebuilder {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Rebuilder{
		db:        db,
		storage:   storage,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Rebuild 全量重建索引，并发调用串行执行
func (r *Rebuilder) Rebuild(ctx context.Context) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	r.setRunning(true)
	start := time.Now()

	documents, files, err := r.rebuild(ctx)
	index.ObserveRebuild(err)
	r.setFinished(err)

	if err != nil {
		r.logger.Error("Index rebuild failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return apperrors.NewSystemError(apperrors.ErrCodeRebuildFailed, "index rebuild failed").WithCause(err)
	}

	r.logger.Info("Index rebuild completed",
		zap.Int("documents", documents),
		zap.Int("files", files),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Status 当前重建状态
func (r *Rebuilder) Status() RebuildStatus {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()

	status := RebuildStatus{
		Running: r.running,
		LastRun: r.lastRun,
	}
	if r.lastError != nil {
		status.LastError = r.lastError.Error()
	}
	return status
}

func (r *Rebuilder) setRunning(running bool) {
	r.stateMu.Lock()
	r.running = running
	r.stateMu.Unlock()
}

func (r *Rebuilder) setFinished(err error) {
	r.stateMu.Lock()
	r.running = false
	r.lastRun = time.Now()
	r.lastError = err
	r.stateMu.Unlock()
}

func (r *Rebuilder) rebuild(ctx context.Context) (int, int, error) {
	if err := r.storage.DeleteAll(); err != nil {
		return 0, 0, fmt.Errorf("clear index: %w", err)
	}

	documents, err := r.reindexDocuments(ctx)
	if err != nil {
		return documents, 0, err
	}

	files, err := r.reindexFiles(ctx)
	if err != nil {
		return documents, files, err
	}
	return documents, files, nil
}

// reindexDocuments 分批回填未删除的文档
func (r *Rebuilder) reindexDocuments(ctx context.Context) (int, error) {
	total := 0
	for offset := 0; ; offset += r.batchSize {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		var docs []models.Document
		err := r.db.WithContext(ctx).
			Where("deleted = ?", false).
			Order("document_id").
			Limit(r.batchSize).
			Offset(offset).
			Find(&docs).Error
		if err != nil {
			return total, fmt.Errorf("load documents batch at %d: %w", offset, err)
		}
		if len(docs) == 0 {
			return total, nil
		}

		records := make([]*index.Record, 0, len(docs))
		for i := range docs {
			records = append(records, index.NewDocumentRecord(&docs[i]))
		}
		if err := r.storage.ApplyBatch(records); err != nil {
			return total, fmt.Errorf("index documents batch at %d: %w", offset, err)
		}
		total += len(docs)
		if len(docs) < r.batchSize {
			return total, nil
		}
	}
}

// reindexFiles 分批回填属于未删除文档、且有可检索内容的文件
func (r *Rebuilder) reindexFiles(ctx context.Context) (int, error) {
	total := 0
	for offset := 0; ; offset += r.batchSize {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		var files []models.DocFile
		err := r.db.WithContext(ctx).
			Where("deleted = ?", false).
			Where("content <> '' OR file_name <> ''").
			Where("document_id IN (?)",
				r.db.Model(&models.Document{}).Select("document_id").Where("deleted = ?", false)).
			Order("file_id").
			Limit(r.batchSize).
			Offset(offset).
			Find(&files).Error
		if err != nil {
			return total, fmt.Errorf("load files batch at %d: %w", offset, err)
		}
		if len(files) == 0 {
			return total, nil
		}

		records := make([]*index.Record, 0, len(files))
		for i := range files {
			records = append(records, index.NewFileRecord(&files[i]))
		}
		if err := r.storage.ApplyBatch(records); err != nil {
			return total, fmt.Errorf("index files batch at %d: %w", offset, err)
		}
		total += len(files)
		if len(files) < r.batchSize {
			return total, nil
		}
	}
}
