package index

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/docshelf/backend-go/internal/config"
)

// SchemaVersion 当前代码期望的索引结构版本
const SchemaVersion = "1"

const schemaVersionKey = "schema_version"

// 删除全部记录时每批处理的记录数
const deleteAllBatchSize = 1000

var (
	// ErrStorageClosed 索引存储已关闭
	ErrStorageClosed = errors.New("index storage is closed")
	// ErrNotReady 索引尚未就绪
	ErrNotReady = errors.New("index is not ready")
)

// Storage 倒排索引存储，支持内存与磁盘两种模式
type Storage struct {
	cfg    config.IndexConfig
	logger *zap.Logger

	mu            sync.RWMutex
	index         bleve.Index
	generation    uint64
	rebuildNeeded bool
	closed        bool
}

// NewStorage 创建索引存储
func NewStorage(cfg config.IndexConfig, logger *zap.Logger) *Storage {
	return &Storage{
		cfg:    cfg,
		logger: logger,
	}
}

// Open 打开或创建索引
// 磁盘模式下校验已有索引的结构版本，版本不符或索引损坏时重建空索引并标记需要全量重建
func (s *Storage) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return nil
	}

	if s.cfg.Provider == config.IndexProviderMemory {
		return s.createLocked()
	}

	if _, err := os.Stat(s.cfg.Dir); os.IsNotExist(err) {
		// 首次启动，索引目录不存在
		return s.createLocked()
	}

	existing, err := bleve.Open(s.cfg.Dir)
	if err != nil {
		s.logger.Warn("Failed to open existing index, recreating",
			zap.String("dir", s.cfg.Dir),
			zap.Error(err))
		return s.recreateLocked()
	}

	version, err := existing.GetInternal([]byte(schemaVersionKey))
	if err != nil || string(version) != SchemaVersion {
		s.logger.Warn("Index schema version mismatch, recreating",
			zap.String("found", string(version)),
			zap.String("expected", SchemaVersion))
		_ = existing.Close()
		return s.recreateLocked()
	}

	s.index = existing
	s.generation++
	s.logger.Info("Opened existing index",
		zap.String("dir", s.cfg.Dir),
		zap.String("schema_version", SchemaVersion))
	return nil
}

// createLocked 创建全新索引，需持有写锁
func (s *Storage) createLocked() error {
	var (
		idx bleve.Index
		err error
	)

	if s.cfg.Provider == config.IndexProviderMemory {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		idx, err = bleve.New(s.cfg.Dir, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	if err := idx.SetInternal([]byte(schemaVersionKey), []byte(SchemaVersion)); err != nil {
		_ = idx.Close()
		return fmt.Errorf("write index schema version: %w", err)
	}

	s.index = idx
	s.generation++
	return nil
}

// recreateLocked 删除磁盘上的索引文件并创建空索引，需持有写锁
func (s *Storage) recreateLocked() error {
	if err := os.RemoveAll(s.cfg.Dir); err != nil {
		return fmt.Errorf("remove index dir: %w", err)
	}
	if err := s.createLocked(); err != nil {
		return err
	}
	s.rebuildNeeded = true
	return nil
}

// RebuildRequired 启动时是否需要全量重建
func (s *Storage) RebuildRequired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rebuildNeeded
}

// Add 写入一条索引记录
func (s *Storage) Add(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.index == nil {
		return ErrStorageClosed
	}
	return s.index.Index(record.ID, record.Body)
}

// Delete 按键删除索引记录，键不存在时为空操作
func (s *Storage) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.index == nil {
		return ErrStorageClosed
	}
	return s.index.Delete(id)
}

// ApplyBatch 批量写入索引记录
func (s *Storage) ApplyBatch(records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.index == nil {
		return ErrStorageClosed
	}

	batch := s.index.NewBatch()
	for _, record := range records {
		if err := batch.Index(record.ID, record.Body); err != nil {
			return fmt.Errorf("batch index %q: %w", record.ID, err)
		}
	}
	return s.index.Batch(batch)
}

// DeleteAll 删除全部索引记录，分批执行
func (s *Storage) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.index == nil {
		return ErrStorageClosed
	}

	for {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), deleteAllBatchSize, 0, false)
		result, err := s.index.Search(req)
		if err != nil {
			return fmt.Errorf("scan index records: %w", err)
		}
		if len(result.Hits) == 0 {
			return nil
		}

		batch := s.index.NewBatch()
		for _, hit := range result.Hits {
			batch.Delete(hit.ID)
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("delete index records: %w", err)
		}
	}
}

// DocCount 统计索引记录总数
func (s *Storage) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.index == nil {
		return 0, ErrStorageClosed
	}
	return s.index.DocCount()
}

// Snapshot 返回当前索引实例及其代数，供读取端做快照切换
func (s *Storage) Snapshot() (bleve.Index, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.index == nil {
		return nil, 0, ErrNotReady
	}
	return s.index, s.generation, nil
}

// Close 关闭索引
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.index == nil {
		return nil
	}

	s.closed = true
	err := s.index.Close()
	s.index = nil
	return err
}

// Destroy 关闭索引并删除磁盘文件，不可恢复
func (s *Storage) Destroy() error {
	if err := s.Close(); err != nil {
		return err
	}
	if s.cfg.Provider == config.IndexProviderDisk {
		return os.RemoveAll(s.cfg.Dir)
	}
	return nil
}
