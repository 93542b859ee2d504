package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blues/fundsync/internal/escrow"
	"github.com/blues/fundsync/internal/logger"
	"github.com/blues/fundsync/internal/reconcile"
	"github.com/blues/fundsync/internal/store"
	"github.com/ethereum/go-ethereum/common"
)

// FinalizeWorkflow 结算与退款流程。两个动作互相独立，
// 都不自动重试，链上回滚原因原样返回给调用方。
type FinalizeWorkflow struct {
	chain  ChainClient
	store  *store.CampaignStore
	engine *reconcile.Engine
}

// NewFinalizeWorkflow 创建结算流程
func NewFinalizeWorkflow(chain ChainClient, campaignStore *store.CampaignStore, engine *reconcile.Engine) *FinalizeWorkflow {
	return &FinalizeWorkflow{
		chain:  chain,
		store:  campaignStore,
		engine: engine,
	}
}

// Finalize 创建者在截止后触发结算，结算事件的结果交给对账引擎落库
func (w *FinalizeWorkflow) Finalize(campaignId uint, caller string) (*reconcile.Outcome, error) {
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
	if !strings.EqualFold(snapshot.Creator.Hex(), caller) {
		return nil, ErrUnauthorized
	}
	if time.Now().Unix() < snapshot.Deadline {
		return nil, ErrDeadlineNotReached
	}
	if snapshot.Finalized {
		return nil, ErrAlreadyFinalized
	}

	receipt, err := w.chain.FinalizeCampaign(blockchainId)
	if err != nil {
		return nil, err
	}

	event, err := w.chain.DecodeFinalizedEvent(receipt)
	if err != nil {
		return nil, fmt.Errorf("解析结算事件失败: %w", err)
	}

	logger.Info("Campaign %d finalized on chain: successful=%v total=%s",
		campaignId, event.Successful, escrow.FromBaseUnits(event.TotalAmount).String())

	// 用结算事件构造权威快照驱动终态跃迁
	finalState := &escrow.CampaignState{
		CampaignID:     blockchainId,
		Creator:        snapshot.Creator,
		Goal:           snapshot.Goal,
		TotalPledged:   event.TotalAmount,
		Deadline:       snapshot.Deadline,
		Finalized:      true,
		Successful:     event.Successful,
		PlatformFeeBps: snapshot.PlatformFeeBps,
	}

	return w.engine.Apply(campaign.ID, finalState)
}

// RefundResult 退款结果
type RefundResult struct {
	CampaignID  uint   `json:"campaign_id"`
	Backer      string `json:"backer"`
	Amount      string `json:"amount"`
	TxHash      string `json:"tx_hash"`
	SyncWarning string `json:"sync_warning,omitempty"`
}

// ClaimRefund 出资人在活动失败后领取退款，成功后本地出资记录转为已退款
func (w *FinalizeWorkflow) ClaimRefund(campaignId uint, backer string) (*RefundResult, error) {
	campaign, err := w.store.GetByID(campaignId)
	if err != nil {
		return nil, err
	}
	if !campaign.IsDeployed() {
		return nil, ErrNotDeployed
	}

	blockchainId := *campaign.BlockchainCampaignID
	backerAddr := common.HexToAddress(backer)

	// 链上状态是退款资格的权威来源
	snapshot, err := w.chain.FetchCampaignState(blockchainId)
	if err != nil {
		return nil, err
	}
	if !snapshot.Finalized || snapshot.Successful {
		return nil, ErrCampaignNotFailed
	}

	onchainPledge, err := w.chain.FetchBackerPledge(blockchainId, backerAddr)
	if err != nil {
		return nil, err
	}
	if onchainPledge.Amount == nil || onchainPledge.Amount.Sign() == 0 {
		return nil, ErrNothingToRefund
	}
	if onchainPledge.HasClaimedRefund {
		return nil, ErrAlreadyClaimed
	}

	receipt, err := w.chain.ClaimRefund(blockchainId)
	if err != nil {
		return nil, err
	}

	result := &RefundResult{
		CampaignID: campaign.ID,
		Backer:     backerAddr.Hex(),
		Amount:     onchainPledge.AmountDecimal().String(),
		TxHash:     receipt.TxHash.Hex(),
	}

	if err := w.store.MarkPledgeRefunded(campaign.ID, backerAddr.Hex(), receipt.TxHash.Hex()); err != nil {
		if errors.Is(err, store.ErrPledgeNotFound) {
			// 链上退款已成交但本地没有对应出资记录，留给补账任务
			logger.Warn("Refund tx %s confirmed but no local pledge for campaign %d backer %s",
				receipt.TxHash.Hex(), campaign.ID, backerAddr.Hex())
			result.SyncWarning = "链上退款已成功，本地记录暂未同步"
			return result, nil
		}
		logger.Error("Refund tx %s confirmed but local update failed: %v", receipt.TxHash.Hex(), err)
		result.SyncWarning = "链上退款已成功，本地记录暂未同步"
		return result, nil
	}

	// 顺手让活动状态向链上收敛
	if _, err := w.engine.Apply(campaign.ID, snapshot); err != nil {
		logger.Debug("Post-refund reconcile for campaign %d: %v", campaign.ID, err)
	}

	return result, nil
}
