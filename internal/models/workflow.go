package models

import (
	"time"
)

// 工作流步骤状态
const (
	RouteStepPending   = "pending"
	RouteStepCompleted = "completed"
)

// Route 审批路线表
type Route struct {
	RouteID    uint      `gorm:"primaryKey;column:route_id" json:"route_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	CreateTime time.Time `gorm:"column:create_time;not null" json:"create_time"`
}

func (Route) TableName() string {
	return "routes"
}

// RouteStep 审批步骤表
// 文档的"活动路线"= 指派给调用者target且状态为pending的最早步骤所属路线
type RouteStep struct {
	StepID     uint      `gorm:"primaryKey;column:step_id" json:"step_id"`
	RouteID    uint      `gorm:"column:route_id;not null;index" json:"route_id"`
	DocumentID uint      `gorm:"column:document_id;not null;index" json:"document_id"`
	TargetID   uint      `gorm:"column:target_id;not null;index" json:"target_id"`
	StepIndex  int       `gorm:"column:step_index;not null" json:"step_index"`
	Status     string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreateTime time.Time `gorm:"column:create_time;not null" json:"create_time"`

	Route Route `gorm:"foreignKey:RouteID" json:"-"`
}

func (RouteStep) TableName() string {
	return "route_steps"
}
