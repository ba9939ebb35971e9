package main

import (
	"log"
	"os"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/docshelf/backend-go/app/bootstrap"
	"github.com/docshelf/backend-go/app/router"
	"github.com/docshelf/backend-go/internal/config"
	"github.com/docshelf/backend-go/internal/logger"
)

func main() {
	// 在bootstrap之前设置端口，便于容器环境覆盖
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8002"
	}
	if p, err := strconv.Atoi(port); err == nil {
		web.BConfig.Listen.HTTPPort = p
	} else {
		web.BConfig.Listen.HTTPPort = 8002
	}

	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	// 配置文件中的端口优先于环境变量默认值
	if cfg := config.GetAppConfig(); cfg != nil && cfg.Server.Port != "" {
		if p, err := strconv.Atoi(cfg.Server.Port); err == nil {
			web.BConfig.Listen.HTTPPort = p
		}
	}

	router.Init()

	web.BConfig.AppName = "Document Search Service"
	web.BConfig.CopyRequestBody = true

	logger.Info("🚀 Starting Document Search Service", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
