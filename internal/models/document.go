package models

import (
	"time"
)

// Document 文档表
// 元数据字段（subject/identifier/publisher等）均可为空，只有title必填
type Document struct {
	DocumentID  uint      `gorm:"primaryKey;column:document_id" json:"document_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Subject     string    `gorm:"size:255" json:"subject"`
	Identifier  string    `gorm:"size:255" json:"identifier"`
	Publisher   string    `gorm:"size:255" json:"publisher"`
	Format      string    `gorm:"size:100" json:"format"`
	Source      string    `gorm:"size:255" json:"source"`
	DocType     string    `gorm:"column:doc_type;size:100" json:"doc_type"`
	Coverage    string    `gorm:"size:255" json:"coverage"`
	Rights      string    `gorm:"size:255" json:"rights"`
	Language    string    `gorm:"size:10;index" json:"language"`
	CreatorID   uint      `gorm:"column:creator_id;not null;index" json:"creator_id"`
	Deleted     bool      `gorm:"not null;default:false;index" json:"-"`
	CreateTime  time.Time `gorm:"column:create_time;not null;index" json:"create_time"`
	UpdateTime  time.Time `gorm:"column:update_time;index" json:"update_time"`
}

func (Document) TableName() string {
	return "documents"
}

// DocFile 文档附件表
// Content 保存由外部抽取流水线解析好的纯文本，索引前必须已填充
type DocFile struct {
	FileID     uint      `gorm:"primaryKey;column:file_id" json:"file_id"`
	DocumentID uint      `gorm:"column:document_id;not null;index" json:"document_id"`
	FileName   string    `gorm:"column:file_name;size:255" json:"file_name"`
	MimeType   string    `gorm:"column:mime_type;size:100;index" json:"mime_type"`
	FileSize   int64     `gorm:"column:file_size;not null;default:0" json:"file_size"`
	Content    string    `gorm:"type:text" json:"-"`
	Deleted    bool      `gorm:"not null;default:false;index" json:"-"`
	CreateTime time.Time `gorm:"column:create_time;not null" json:"create_time"`

	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (DocFile) TableName() string {
	return "doc_files"
}

// DocumentShare 文档分享记录表
type DocumentShare struct {
	ShareID    uint      `gorm:"primaryKey;column:share_id" json:"share_id"`
	DocumentID uint      `gorm:"column:document_id;not null;index" json:"document_id"`
	TargetID   uint      `gorm:"column:target_id;not null" json:"target_id"`
	CreateTime time.Time `gorm:"column:create_time;not null" json:"create_time"`
}

func (DocumentShare) TableName() string {
	return "document_shares"
}
