package router

import (
	"github.com/beego/beego/v2/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docshelf/backend-go/app/controllers"
	"github.com/docshelf/backend-go/internal/config"
)

// Init 注册全部路由，必须在配置加载后调用
func Init() {
	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")

	web.Router("/api/search", &controllers.SearchController{}, "get:Get")

	indexController := &controllers.IndexController{}
	web.Router("/api/index/rebuild", indexController, "post:Rebuild")
	web.Router("/api/index/status", indexController, "get:Status")

	if config.GetAppConfig().Metrics.Enabled {
		web.Handler("/metrics", promhttp.Handler())
	}
}
