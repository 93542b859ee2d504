package workflow

import (
	"errors"

	"github.com/blues/fundsync/internal/logger"
	"github.com/blues/fundsync/internal/model"
	"github.com/blues/fundsync/internal/reconcile"
	"github.com/blues/fundsync/internal/store"
)

// SyncWorkflow 主动对账：拉取链上快照驱动对账引擎，
// 并在本地出资合计落后于链上总额时回放事件日志补账
type SyncWorkflow struct {
	chain  ChainClient
	store  *store.CampaignStore
	engine *reconcile.Engine
}

// NewSyncWorkflow 创建对账流程
func NewSyncWorkflow(chain ChainClient, campaignStore *store.CampaignStore, engine *reconcile.Engine) *SyncWorkflow {
	return &SyncWorkflow{
		chain:  chain,
		store:  campaignStore,
		engine: engine,
	}
}

// Sync 对单个活动做一轮完整对账，可安全重复调用
func (w *SyncWorkflow) Sync(campaignId uint) (*reconcile.Outcome, error) {
	campaign, err := w.store.GetByID(campaignId)
	if err != nil {
		return nil, err
	}
	if !campaign.IsDeployed() {
		return nil, ErrNotDeployed
	}

	blockchainId := *campaign.BlockchainCampaignID

	snapshot, err := w.chain.FetchCampaignState(blockchainId)
	if err != nil {
		return nil, err
	}

	// 本地出资合计落后于链上总额说明有漏账，先补再对
	if err := w.backfillPledges(campaign, blockchainId); err != nil {
		logger.Warn("Pledge backfill for campaign %d failed: %v", campaign.ID, err)
	}

	return w.engine.Apply(campaign.ID, snapshot)
}

// backfillPledges 回放 PledgeMade 日志，补入本地缺失的出资记录。
// tx_hash 唯一索引让重复回放成为无害操作。
func (w *SyncWorkflow) backfillPledges(campaign *model.Campaign, blockchainId int64) error {
	snapshot, err := w.chain.FetchCampaignState(blockchainId)
	if err != nil {
		return err
	}

	localSum, err := w.store.SumConfirmedPledges(campaign.ID)
	if err != nil {
		return err
	}

	chainTotal := snapshot.TotalPledgedDecimal()
	if localSum.GreaterThanOrEqual(chainTotal) {
		return nil
	}

	logger.Info("Campaign %d local pledge sum %s behind chain total %s, replaying logs",
		campaign.ID, localSum.String(), chainTotal.String())

	events, err := w.chain.FilterPledgeEvents(blockchainId, w.chain.DeployBlock())
	if err != nil {
		return err
	}

	backfilled := 0
	for _, event := range events {
		exists, err := w.store.HasPledgeTx(event.TxHash)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		pledge := &model.Pledge{
			CampaignID:    campaign.ID,
			BackerAddress: event.Backer.Hex(),
			Amount:        event.AmountDecimal(),
			Currency:      campaign.Currency,
			Status:        model.PledgeStatusConfirmed,
			TxHash:        event.TxHash,
			BlockNumber:   event.BlockNumber,
		}
		if err := w.store.InsertPledge(pledge); err != nil {
			if errors.Is(err, store.ErrDuplicatePledge) {
				continue
			}
			return err
		}
		backfilled++
	}

	if backfilled > 0 {
		logger.Info("Backfilled %d missing pledges for campaign %d", backfilled, campaign.ID)
	}

	return nil
}
