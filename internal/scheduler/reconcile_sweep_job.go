package scheduler

import (
	"sync"
	"time"

	"github.com/blues/fundsync/internal/config"
	"github.com/blues/fundsync/internal/logger"
	"github.com/blues/fundsync/internal/store"
	"github.com/blues/fundsync/internal/workflow"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
)

// ReconcileSweepJob 周期对账任务：扫描所有已上链的非终态活动，
// 逐个拉取链上快照对账并补齐缺失的出资记录
type ReconcileSweepJob struct {
	store  *store.CampaignStore
	sync   *workflow.SyncWorkflow
	config *config.Config
}

// NewReconcileSweepJob 创建周期对账任务
func NewReconcileSweepJob(campaignStore *store.CampaignStore, syncWorkflow *workflow.SyncWorkflow, cfg *config.Config) *ReconcileSweepJob {
	return &ReconcileSweepJob{
		store:  campaignStore,
		sync:   syncWorkflow,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *ReconcileSweepJob) GetName() string {
	return "campaign_reconcile_sweep"
}

// GetSchedule 获取调度配置
func (j *ReconcileSweepJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.SweepInterval) * time.Second)
}

// Execute 执行一轮对账
func (j *ReconcileSweepJob) Execute() {
	logger.Info("Starting campaign reconcile sweep")

	campaigns, err := j.store.ListReconcilable(j.config.Task.SweepBatch)
	if err != nil {
		logger.Error("Failed to fetch campaigns for sweep: %v", err)
		return
	}
	if len(campaigns) == 0 {
		logger.Debug("No campaigns to reconcile")
		return
	}

	// 临时协程池，大小等于本批活动数
	pool, err := ants.NewPool(len(campaigns))
	if err != nil {
		logger.Error("Failed to create sweep pool: %v", err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	reconciled := 0
	var mu sync.Mutex

	for _, campaign := range campaigns {
		campaignId := campaign.ID
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			outcome, err := j.sync.Sync(campaignId)
			if err != nil {
				logger.Error("Sweep reconcile failed for campaign %d: %v", campaignId, err)
				return
			}
			if outcome.Transitioned {
				logger.Info("Sweep moved campaign %d to %s", campaignId, outcome.Status)
				mu.Lock()
				reconciled++
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit sweep task for campaign %d: %v", campaignId, err)
		}
	}

	wg.Wait()
	logger.Info("Reconcile sweep completed: %d campaigns checked, %d finalized", len(campaigns), reconciled)
}
