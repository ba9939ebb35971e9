package controllers

import (
	"github.com/docshelf/backend-go/app/bootstrap"
)

// IndexController 索引管理接口
type IndexController struct {
	BaseController
}

// Rebuild 处理 POST /api/index/rebuild
// 同步返回，重建工作在后台执行
func (c *IndexController) Rebuild() {
	app := bootstrap.GetApp()
	status := app.AdminService.TriggerRebuild(c.Ctx.Request.Context())
	c.JSONSuccess(status)
}

// Status 处理 GET /api/index/status
func (c *IndexController) Status() {
	app := bootstrap.GetApp()
	c.JSONSuccess(app.AdminService.Status())
}
