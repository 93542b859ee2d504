package scheduler

import (
	"github.com/blues/fundsync/internal/config"
	"github.com/blues/fundsync/internal/logger"
	"github.com/blues/fundsync/internal/store"
	"github.com/blues/fundsync/internal/workflow"
	"github.com/go-co-op/gocron/v2"
)

// Job 定时任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	jobs      []Job
}

// NewManager 创建任务管理器
func NewManager() (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Manager{scheduler: s}, nil
}

// Start 注册并启动所有定时任务
func Start(campaignStore *store.CampaignStore, syncWorkflow *workflow.SyncWorkflow, cfg *config.Config) *Manager {
	manager, err := NewManager()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	manager.Register(NewReconcileSweepJob(campaignStore, syncWorkflow, cfg))

	manager.scheduler.Start()
	logger.Info("Task manager started with %d jobs", len(manager.jobs))

	return manager
}

// Register 注册任务，单例模式避免同一任务重入
func (m *Manager) Register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
		return
	}
	m.jobs = append(m.jobs, job)
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
