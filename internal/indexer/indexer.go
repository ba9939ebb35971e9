package indexer

import (
	"context"

	"go.uber.org/zap"

	"github.com/docshelf/backend-go/internal/index"
	"github.com/docshelf/backend-go/internal/models"
)

// EntityIndexer 文档/文件索引器
// 索引是派生数据，写入失败只记录日志不向调用方传播，关系库始终是权威状态
type EntityIndexer struct {
	storage *index.Storage
	logger  *zap.Logger
}

// NewEntityIndexer 创建实体索引器
func NewEntityIndexer(storage *index.Storage, logger *zap.Logger) *EntityIndexer {
	return &EntityIndexer{
		storage: storage,
		logger:  logger,
	}
}

// IndexDocument 为文档写入索引记录
func (ei *EntityIndexer) IndexDocument(ctx context.Context, doc *models.Document) {
	if doc == nil {
		return
	}

	err := ei.storage.Add(index.NewDocumentRecord(doc))
	index.ObserveOperation("index_document", err)
	if err != nil {
		ei.logger.Error("Failed to index document",
			zap.Uint("document_id", doc.DocumentID),
			zap.Error(err))
	}
}

// UpdateDocument 全量覆盖文档的索引记录（先删后加，不做字段级合并）
func (ei *EntityIndexer) UpdateDocument(ctx context.Context, doc *models.Document) {
	if doc == nil {
		return
	}

	if err := ei.storage.Delete(index.DocumentKey(doc.DocumentID)); err != nil {
		ei.logger.Error("Failed to delete stale document record",
			zap.Uint("document_id", doc.DocumentID),
			zap.Error(err))
	}
	ei.IndexDocument(ctx, doc)
}

// IndexFile 为文件写入索引记录，无可检索内容的文件不入索引
func (ei *EntityIndexer) IndexFile(ctx context.Context, file *models.DocFile) {
	if file == nil {
		return
	}
	if file.Content == "" && file.FileName == "" {
		ei.logger.Debug("Skipping file with no indexable content",
			zap.Uint("file_id", file.FileID))
		return
	}

	err := ei.storage.Add(index.NewFileRecord(file))
	index.ObserveOperation("index_file", err)
	if err != nil {
		ei.logger.Error("Failed to index file",
			zap.Uint("file_id", file.FileID),
			zap.Uint("document_id", file.DocumentID),
			zap.Error(err))
	}
}

// UpdateFile 全量覆盖文件的索引记录
func (ei *EntityIndexer) UpdateFile(ctx context.Context, file *models.DocFile) {
	if file == nil {
		return
	}

	if err := ei.storage.Delete(index.FileKey(file.FileID)); err != nil {
		ei.logger.Error("Failed to delete stale file record",
			zap.Uint("file_id", file.FileID),
			zap.Error(err))
	}
	ei.IndexFile(ctx, file)
}

// DeleteRecord 删除实体的索引记录，文档键和文件键都会尝试删除，不存在时为空操作
func (ei *EntityIndexer) DeleteRecord(ctx context.Context, id uint) {
	for _, key := range []string{index.DocumentKey(id), index.FileKey(id)} {
		err := ei.storage.Delete(key)
		index.ObserveOperation("delete_record", err)
		if err != nil {
			ei.logger.Error("Failed to delete index record",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}
