// @title HackAssist Web API
// @version 1.0
// @description HackAssist 前端服务：会话、引导向导、聊天助手与小队报名。

// @host localhost:3000
// @BasePath /

package main

import (
	"flag"
	"hackassist_web/internal/app"
	"hackassist_web/internal/config"
	"hackassist_web/pkg/logger"
	"log"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer logger.Log.Sync()

	application.Run()
}
