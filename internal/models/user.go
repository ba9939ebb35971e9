package models

import (
	"time"
)

// User 用户表（仅核心字段，认证由外部系统负责）
type User struct {
	UserID     uint      `gorm:"primaryKey;column:user_id" json:"user_id"`
	Username   string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"size:200" json:"email"`
	CreateTime time.Time `gorm:"column:create_time;not null" json:"create_time"`
}

func (User) TableName() string {
	return "users"
}

// Group 权限组表
// 每个用户有一个个人组（UserID非空），ACL的target_id一律指向组
type Group struct {
	GroupID    uint      `gorm:"primaryKey;column:group_id" json:"group_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	UserID     *uint     `gorm:"column:user_id;index" json:"user_id"`
	CreateTime time.Time `gorm:"column:create_time;not null" json:"create_time"`
}

func (Group) TableName() string {
	return "groups"
}

// UserGroup 用户-组成员关系表
type UserGroup struct {
	UserID  uint `gorm:"primaryKey;column:user_id" json:"user_id"`
	GroupID uint `gorm:"primaryKey;column:group_id" json:"group_id"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}
