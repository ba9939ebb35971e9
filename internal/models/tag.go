package models

import (
	"time"
)

// Tag 标签表，ParentID构成标签层级
type Tag struct {
	TagID      uint      `gorm:"primaryKey;column:tag_id" json:"tag_id"`
	Name       string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	ParentID   *uint     `gorm:"column:parent_id;index" json:"parent_id"`
	CreateTime time.Time `gorm:"column:create_time;not null" json:"create_time"`

	Parent *Tag `gorm:"foreignKey:ParentID" json:"-"`
}

func (Tag) TableName() string {
	return "tags"
}

// DocumentTag 文档-标签关系表
type DocumentTag struct {
	DocumentID uint `gorm:"primaryKey;column:document_id" json:"document_id"`
	TagID      uint `gorm:"primaryKey;column:tag_id" json:"tag_id"`
}

func (DocumentTag) TableName() string {
	return "document_tags"
}
