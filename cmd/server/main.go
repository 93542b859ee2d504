package main

import (
	"github.com/blues/fundsync/internal/config"
	"github.com/blues/fundsync/internal/database"
	"github.com/blues/fundsync/internal/escrow"
	"github.com/blues/fundsync/internal/handler"
	"github.com/blues/fundsync/internal/logger"
	"github.com/blues/fundsync/internal/reconcile"
	"github.com/blues/fundsync/internal/router"
	"github.com/blues/fundsync/internal/scheduler"
	"github.com/blues/fundsync/internal/store"
	"github.com/blues/fundsync/internal/workflow"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	level := logger.ParseLogLevel(cfg.Log.Level)
	if cfg.Log.Output == "file" {
		fileLogger, err := logger.NewWithRotation(level, logger.RotationConfig{Filename: cfg.Log.File})
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(fileLogger)
	} else {
		stdoutLogger, err := logger.New(level)
		if err != nil {
			logger.Fatal("Failed to initialize logger: %v", err)
		}
		logger.SetDefaultLogger(stdoutLogger)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链客户端
	chainClient, err := escrow.Init(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain client: %v", err)
	}

	// 组装核心组件
	campaignStore := store.NewCampaignStore(db)
	engine := reconcile.NewEngine(db)

	deployWorkflow := workflow.NewDeployWorkflow(chainClient, campaignStore, cfg.Chain.FeeBps)
	pledgeWorkflow := workflow.NewPledgeWorkflow(chainClient, campaignStore, engine)
	finalizeWorkflow := workflow.NewFinalizeWorkflow(chainClient, campaignStore, engine)
	syncWorkflow := workflow.NewSyncWorkflow(chainClient, campaignStore, engine)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(
		handler.NewCampaignHandler(campaignStore),
		handler.NewLifecycleHandler(deployWorkflow, pledgeWorkflow, finalizeWorkflow, syncWorkflow),
	)

	// 启动周期对账任务
	manager := scheduler.Start(campaignStore, syncWorkflow, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
