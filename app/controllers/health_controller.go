package controllers

import (
	"net/http"

	"github.com/docshelf/backend-go/app/bootstrap"
)

// RootController 服务根路径
type RootController struct {
	BaseController
}

// Index 处理 GET /
func (c *RootController) Index() {
	c.JSONSuccess(map[string]string{
		"service": "docshelf-search",
	})
}

// HealthController 健康检查接口
type HealthController struct {
	BaseController
}

// Health 处理 GET /health
func (c *HealthController) Health() {
	app := bootstrap.GetApp()

	dbHealthy := app.DB.HealthCheck() == nil
	payload := map[string]interface{}{
		"database": dbHealthy,
		"index":    app.AdminService.Status(),
	}

	if !dbHealthy {
		c.JSON(http.StatusServiceUnavailable, payload)
		return
	}
	c.JSONSuccess(payload)
}
