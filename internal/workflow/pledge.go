package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blues/fundsync/internal/escrow"
	"github.com/blues/fundsync/internal/logger"
	"github.com/blues/fundsync/internal/model"
	"github.com/blues/fundsync/internal/reconcile"
	"github.com/blues/fundsync/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// PledgeState 出资流程状态
type PledgeState string

const (
	PledgeStateInput   PledgeState = "input"   // 校验出资参数
	PledgeStateApprove PledgeState = "approve" // 代币授权
	PledgeStatePledge  PledgeState = "pledge"  // 出资交易
	PledgeStateDone    PledgeState = "done"    // 完成
)

// PledgeWorkflow 出资接入流程：input -> approve -> pledge，步骤严格串行，
// 授权确认之前不提交出资交易，出资确认之前不写库
type PledgeWorkflow struct {
	chain  ChainClient
	store  *store.CampaignStore
	engine *reconcile.Engine
}

// NewPledgeWorkflow 创建出资流程
func NewPledgeWorkflow(chain ChainClient, campaignStore *store.CampaignStore, engine *reconcile.Engine) *PledgeWorkflow {
	return &PledgeWorkflow{
		chain:  chain,
		store:  campaignStore,
		engine: engine,
	}
}

// PledgeResult 出资流程结果
type PledgeResult struct {
	Pledge      *model.Pledge      `json:"pledge"`
	Outcome     *reconcile.Outcome `json:"outcome,omitempty"`
	State       PledgeState        `json:"state"`
	SyncWarning string             `json:"sync_warning,omitempty"` // 链上成功但本地同步失败时的提示
}

// Run 以服务账户为出资人执行完整出资流程
func (w *PledgeWorkflow) Run(campaignId uint, amount decimal.Decimal) (*PledgeResult, error) {
	campaign, blockchainId, err := w.prepare(campaignId, amount)
	if err != nil {
		return &PledgeResult{State: PledgeStateInput}, err
	}

	if err := w.ensureAllowance(amount); err != nil {
		// 授权失败停留在授权步骤，由调用方重新发起
		return &PledgeResult{State: PledgeStateApprove}, err
	}

	receipt, err := w.chain.Pledge(blockchainId, escrow.ToBaseUnits(amount))
	if err != nil {
		return &PledgeResult{State: PledgeStatePledge}, err
	}

	return w.persistConfirmed(campaign, blockchainId, receipt)
}

// Confirm 校验并入账一笔钱包端已提交的出资交易。
// 入账金额以解码出的链上事件为准，不信任调用方声明的金额。
func (w *PledgeWorkflow) Confirm(campaignId uint, walletAddress string, claimedAmount decimal.Decimal, txHash string) (*PledgeResult, error) {
	campaign, err := w.store.GetByID(campaignId)
	if err != nil {
		return nil, err
	}
	if !campaign.IsDeployed() {
		return nil, ErrNotDeployed
	}

	receipt, err := w.chain.TransactionReceipt(common.HexToHash(txHash))
	if err != nil {
		return nil, fmt.Errorf("获取交易回执失败: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, ErrTxNotSuccessful
	}

	// 钱包端提交的交易在入账前必须达到配置的确认数，避免重组后留下幻影出资
	confirmed, err := w.chain.IsConfirmed(receipt)
	if err != nil {
		return nil, fmt.Errorf("检查交易确认数失败: %w", err)
	}
	if !confirmed {
		return nil, ErrTxNotConfirmed
	}

	event, err := w.chain.DecodePledgeEvent(receipt)
	if err != nil {
		return nil, fmt.Errorf("解析出资事件失败: %w", err)
	}

	// 事件必须指向声明的活动与出资人
	if event.CampaignID != *campaign.BlockchainCampaignID {
		return nil, ErrEventMismatch
	}
	if !strings.EqualFold(event.Backer.Hex(), walletAddress) {
		return nil, ErrEventMismatch
	}
	if !claimedAmount.Equal(event.AmountDecimal()) {
		logger.Warn("Pledge tx %s claimed amount %s differs from event amount %s, using event",
			txHash, claimedAmount.String(), event.AmountDecimal().String())
	}

	return w.persistConfirmed(campaign, event.CampaignID, receipt)
}

// prepare 出资前置校验，任何链上调用之前先做本地拒绝
func (w *PledgeWorkflow) prepare(campaignId uint, amount decimal.Decimal) (*model.Campaign, int64, error) {
	campaign, err := w.store.GetByID(campaignId)
	if err != nil {
		return nil, 0, err
	}

	// 未上链的活动不允许进入任何链上步骤
	if !campaign.IsDeployed() {
		return nil, 0, ErrNotDeployed
	}
	if !amount.IsPositive() {
		return nil, 0, ErrInvalidAmount
	}

	minAmount, hasTiers, err := w.store.MinTierAmount(campaign.ID)
	if err != nil {
		return nil, 0, err
	}
	if hasTiers && amount.LessThan(minAmount) {
		return nil, 0, ErrBelowMinimumPledge
	}

	blockchainId := *campaign.BlockchainCampaignID

	// 确认活动确实存在于链上（零地址创建者在适配器里已被拒绝）
	if _, err := w.chain.FetchCampaignState(blockchainId); err != nil {
		return nil, 0, err
	}

	balance, err := w.chain.BalanceOf(w.chain.AccountAddress())
	if err != nil {
		return nil, 0, err
	}
	if escrow.FromBaseUnits(balance).LessThan(amount) {
		return nil, 0, ErrInsufficientBalance
	}

	return campaign, blockchainId, nil
}

// ensureAllowance 授权不足时按请求金额精确授权并等待确认
func (w *PledgeWorkflow) ensureAllowance(amount decimal.Decimal) error {
	allowance, err := w.chain.Allowance(w.chain.AccountAddress())
	if err != nil {
		return err
	}
	if escrow.FromBaseUnits(allowance).GreaterThanOrEqual(amount) {
		return nil
	}

	if _, err := w.chain.Approve(escrow.ToBaseUnits(amount)); err != nil {
		return err
	}

	return nil
}

// persistConfirmed 把已确认的链上出资写入本地库并触发对账。
// 链上已成功的出资不因本地写失败而回滚：失败只记录并随后由补账任务修复。
func (w *PledgeWorkflow) persistConfirmed(campaign *model.Campaign, blockchainId int64, receipt *types.Receipt) (*PledgeResult, error) {
	event, err := w.chain.DecodePledgeEvent(receipt)
	if err != nil {
		return nil, fmt.Errorf("解析出资事件失败: %w", err)
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

	result := &PledgeResult{Pledge: pledge, State: PledgeStateDone}

	if err := w.store.InsertPledge(pledge); err != nil {
		if errors.Is(err, store.ErrDuplicatePledge) {
			// 同一笔链上交易重复入账是无害的重放
			logger.Debug("Pledge tx %s already recorded", event.TxHash)
		} else {
			// 链上出资已成交，本地落库失败不能丢：记录并等补账任务找回
			logger.Error("On-chain pledge %s confirmed but local insert failed: %v", event.TxHash, err)
			result.SyncWarning = "链上出资已成功，本地记录暂未同步"
			return result, nil
		}
	}

	snapshot, err := w.chain.FetchCampaignState(blockchainId)
	if err != nil {
		logger.Warn("Post-pledge snapshot fetch failed for campaign %d: %v", campaign.ID, err)
		result.SyncWarning = "链上出资已成功，状态同步将在稍后重试"
		return result, nil
	}

	outcome, err := w.engine.Apply(campaign.ID, snapshot)
	if err != nil {
		logger.Warn("Post-pledge reconcile failed for campaign %d: %v", campaign.ID, err)
		result.SyncWarning = "链上出资已成功，状态同步将在稍后重试"
		return result, nil
	}

	result.Outcome = outcome
	return result, nil
}
