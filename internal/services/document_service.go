package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/docshelf/backend-go/internal/errors"
	"github.com/docshelf/backend-go/internal/indexer"
	"github.com/docshelf/backend-go/internal/interfaces"
	"github.com/docshelf/backend-go/internal/models"
)

// DocumentService 文档服务
// 实体变更提交后向事件队列投递索引事件，业务操作不等待索引写入
type DocumentService struct {
	db     interfaces.DatabaseInterface
	queue  *indexer.EventQueue
	logger *zap.Logger
}

// NewDocumentService 创建文档服务
func NewDocumentService(db interfaces.DatabaseInterface, queue *indexer.EventQueue, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		db:     db,
		queue:  queue,
		logger: logger,
	}
}

// CreateDocument 创建文档
func (s *DocumentService) CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	now := time.Now()
	doc.CreateTime = now
	doc.UpdateTime = now
	doc.Deleted = false

	if err := s.db.GetDB().WithContext(ctx).Create(doc).Error; err != nil {
		s.logger.Error("Failed to create document", zap.Error(err))
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to create document").WithCause(err)
	}

	s.queue.Publish(indexer.Event{Type: indexer.EventIndexDocument, Document: doc})
	s.logger.Info("Document created", zap.Uint("document_id", doc.DocumentID))
	return doc, nil
}

// GetDocument 按ID获取未删除的文档
func (s *DocumentService) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := s.db.GetDB().WithContext(ctx).
		Where("document_id = ? AND deleted = ?", id, false).
		First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFoundError("document")
		}
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to load document").WithCause(err)
	}
	return &doc, nil
}

// UpdateDocument 更新文档并全量覆盖其索引记录
func (s *DocumentService) UpdateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.UpdateTime = time.Now()

	err := s.db.GetDB().WithContext(ctx).
		Model(&models.Document{}).
		Where("document_id = ? AND deleted = ?", doc.DocumentID, false).
		Updates(doc).Error
	if err != nil {
		s.logger.Error("Failed to update document",
			zap.Uint("document_id", doc.DocumentID),
			zap.Error(err))
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to update document").WithCause(err)
	}

	s.queue.Publish(indexer.Event{Type: indexer.EventUpdateDocument, Document: doc})
	return doc, nil
}

// DeleteDocument 软删除文档及其文件，并移除对应索引记录
func (s *DocumentService) DeleteDocument(ctx context.Context, id uint) error {
	var fileIDs []uint

	db := s.db.GetDB().WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DocFile{}).
			Where("document_id = ? AND deleted = ?", id, false).
			Pluck("file_id", &fileIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DocFile{}).
			Where("document_id = ?", id).
			Update("deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.Document{}).
			Where("document_id = ?", id).
			Update("deleted", true).Error
	})
	if err != nil {
		s.logger.Error("Failed to delete document", zap.Uint("document_id", id), zap.Error(err))
		return apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to delete document").WithCause(err)
	}

	s.queue.Publish(indexer.Event{Type: indexer.EventDeleteRecord, RecordID: id})
	for _, fileID := range fileIDs {
		s.queue.Publish(indexer.Event{Type: indexer.EventDeleteRecord, RecordID: fileID})
	}
	s.logger.Info("Document deleted", zap.Uint("document_id", id), zap.Int("files", len(fileIDs)))
	return nil
}

// AddFile 为文档添加文件，文件的抽取文本必须在调用前就位
func (s *DocumentService) AddFile(ctx context.Context, file *models.DocFile) (*models.DocFile, error) {
	file.CreateTime = time.Now()
	file.Deleted = false

	if err := s.db.GetDB().WithContext(ctx).Create(file).Error; err != nil {
		s.logger.Error("Failed to create file",
			zap.Uint("document_id", file.DocumentID),
			zap.Error(err))
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to create file").WithCause(err)
	}

	s.queue.Publish(indexer.Event{Type: indexer.EventIndexFile, File: file})
	return file, nil
}

// UpdateFile 更新文件并全量覆盖其索引记录
func (s *DocumentService) UpdateFile(ctx context.Context, file *models.DocFile) (*models.DocFile, error) {
	err := s.db.GetDB().WithContext(ctx).
		Model(&models.DocFile{}).
		Where("file_id = ? AND deleted = ?", file.FileID, false).
		Updates(file).Error
	if err != nil {
		s.logger.Error("Failed to update file", zap.Uint("file_id", file.FileID), zap.Error(err))
		return nil, apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to update file").WithCause(err)
	}

	s.queue.Publish(indexer.Event{Type: indexer.EventUpdateFile, File: file})
	return file, nil
}

// DeleteFile 软删除文件并移除其索引记录
func (s *DocumentService) DeleteFile(ctx context.Context, fileID uint) error {
	err := s.db.GetDB().WithContext(ctx).
		Model(&models.DocFile{}).
		Where("file_id = ?", fileID).
		Update("deleted", true).Error
	if err != nil {
		s.logger.Error("Failed to delete file", zap.Uint("file_id", fileID), zap.Error(err))
		return apperrors.NewSystemError(apperrors.ErrCodeDatabaseError, "failed to delete file").WithCause(err)
	}

	s.queue.Publish(indexer.Event{Type: indexer.EventDeleteRecord, RecordID: fileID})
	return nil
}
