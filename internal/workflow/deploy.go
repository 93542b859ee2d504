package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/blues/fundsync/internal/escrow"
	"github.com/blues/fundsync/internal/logger"
	"github.com/blues/fundsync/internal/model"
	"github.com/blues/fundsync/internal/store"
)

// DeployWorkflow 活动上链流程：在托管合约上创建活动并绑定链上ID。
// 链上ID只允许绑定一次，由存储层的 IS NULL 守卫保证。
type DeployWorkflow struct {
	chain  ChainClient
	store  *store.CampaignStore
	feeBps int64
}

// NewDeployWorkflow 创建上链流程
func NewDeployWorkflow(chain ChainClient, campaignStore *store.CampaignStore, feeBps int64) *DeployWorkflow {
	return &DeployWorkflow{
		chain:  chain,
		store:  campaignStore,
		feeBps: feeBps,
	}
}

// Deploy 执行上链：createCampaign 交易确认后解码 CampaignCreated 事件，
// 稀疏更新链上字段并把活动推进到进行中
func (w *DeployWorkflow) Deploy(campaignId uint, caller string) (*model.Campaign, error) {
	campaign, err := w.store.GetByID(campaignId)
	if err != nil {
		return nil, err
	}

	if campaign.IsDeployed() {
		return nil, store.ErrAlreadyDeployed
	}
	if campaign.Status != model.CampaignStatusDraft && campaign.Status != model.CampaignStatusReview {
		return nil, ErrInvalidStatus
	}
	if !strings.EqualFold(campaign.CreatorAddress, caller) {
		return nil, ErrUnauthorized
	}

	receipt, err := w.chain.CreateCampaign(
		escrow.ToBaseUnits(campaign.GoalAmount),
		int64(campaign.DurationDays),
		w.feeBps,
	)
	if err != nil {
		return nil, err
	}

	event, err := w.chain.DecodeCreatedEvent(receipt)
	if err != nil {
		return nil, fmt.Errorf("解析创建事件失败: %w", err)
	}

	startDate := time.Now()
	endDate := startDate.AddDate(0, 0, campaign.DurationDays)
	status := model.CampaignStatusActive
	txHash := receipt.TxHash.Hex()

	if err := w.store.UpdateBlockchainData(campaign.ID, store.BlockchainUpdate{
		BlockchainCampaignID: &event.CampaignID,
		DeployTxHash:         &txHash,
		StartDate:            &startDate,
		EndDate:              &endDate,
		Status:               &status,
	}); err != nil {
		// 链上创建已成功，本地绑定失败必须暴露而不是吞掉
		logger.Error("Campaign %d created on chain (id %d, tx %s) but local bind failed: %v",
			campaign.ID, event.CampaignID, txHash, err)
		return nil, err
	}

	logger.Info("Campaign %d deployed on chain with id %d (tx %s)", campaign.ID, event.CampaignID, txHash)

	return w.store.GetByID(campaign.ID)
}
