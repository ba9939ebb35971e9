package interfaces

import (
	"context"

	"gorm.io/gorm"

	"github.com/docshelf/backend-go/internal/models"
)

// DatabaseInterface 数据库接口
type DatabaseInterface interface {
	GetDB() *gorm.DB
	Close() error
	HealthCheck() error
}

// IndexWriterInterface 索引写入接口
// 调用方传入完整填充的实体（文件的抽取文本必须已就位）
// 所有变更方法吞掉内部错误：索引是派生数据，失败不回滚触发它的事务
type IndexWriterInterface interface {
	IndexDocument(ctx context.Context, doc *models.Document)
	UpdateDocument(ctx context.Context, doc *models.Document)
	IndexFile(ctx context.Context, file *models.DocFile)
	UpdateFile(ctx context.Context, file *models.DocFile)
	DeleteRecord(ctx context.Context, id uint)
}

// RebuilderInterface 索引重建接口
type RebuilderInterface interface {
	Rebuild(ctx context.Context) error
}
