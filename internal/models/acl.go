package models

// DocumentACL 文档访问控制表
// target_id 指向 groups.group_id（个人组或普通组）
type DocumentACL struct {
	ACLID      uint `gorm:"primaryKey;column:acl_id" json:"acl_id"`
	DocumentID uint `gorm:"column:document_id;not null;index:idx_doc_acl,priority:1" json:"document_id"`
	TargetID   uint `gorm:"column:target_id;not null;index:idx_doc_acl,priority:2" json:"target_id"`
	CanRead    bool `gorm:"column:can_read;not null;default:false" json:"can_read"`
	CanWrite   bool `gorm:"column:can_write;not null;default:false" json:"can_write"`
}

func (DocumentACL) TableName() string {
	return "document_acls"
}

// TagACL 标签访问控制表，文档可通过标签继承可见性
type TagACL struct {
	ACLID    uint `gorm:"primaryKey;column:acl_id" json:"acl_id"`
	TagID    uint `gorm:"column:tag_id;not null;index:idx_tag_acl,priority:1" json:"tag_id"`
	TargetID uint `gorm:"column:target_id;not null;index:idx_tag_acl,priority:2" json:"target_id"`
	CanRead  bool `gorm:"column:can_read;not null;default:false" json:"can_read"`
}

func (TagACL) TableName() string {
	return "tag_acls"
}
