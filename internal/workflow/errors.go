package workflow

import (
	"errors"

	"github.com/blues/fundsync/internal/reconcile"
)

// 工作流前置条件错误。链上回滚类错误由 escrow.ErrChainRevert 原样携带回滚原因向上传递。
var (
	// ErrNotDeployed 活动未绑定链上ID，出资/结算/退款一律先在本地拒绝。
	// 与对账引擎共用同一个哨兵，handler 的错误映射对两条路径都生效
	ErrNotDeployed = reconcile.ErrNotDeployed
	// ErrUnauthorized 调用者不是活动创建者
	ErrUnauthorized = errors.New("只有活动创建者可以执行此操作")
	// ErrDeadlineNotReached 活动截止时间未到
	ErrDeadlineNotReached = errors.New("活动尚未到达截止时间")
	// ErrAlreadyFinalized 活动已在链上结算
	ErrAlreadyFinalized = errors.New("活动已结算")
	// ErrCampaignNotFailed 只有失败的活动可以退款
	ErrCampaignNotFailed = errors.New("活动未失败，无法退款")
	// ErrNothingToRefund 出资人在链上没有可退的出资
	ErrNothingToRefund = errors.New("没有可退款的出资")
	// ErrAlreadyClaimed 出资人已领取过退款
	ErrAlreadyClaimed = errors.New("退款已领取")
	// ErrInvalidAmount 出资金额必须大于0
	ErrInvalidAmount = errors.New("出资金额必须大于0")
	// ErrBelowMinimumPledge 出资金额低于活动最低档位
	ErrBelowMinimumPledge = errors.New("出资金额低于最低档位")
	// ErrInsufficientBalance 出资人USDC余额不足
	ErrInsufficientBalance = errors.New("USDC余额不足")
	// ErrTxNotSuccessful 提交的交易哈希未成功上链
	ErrTxNotSuccessful = errors.New("交易未成功上链")
	// ErrTxNotConfirmed 交易未达到所需确认数，稍后重新提交
	ErrTxNotConfirmed = errors.New("交易确认数不足")
	// ErrEventMismatch 交易事件与声明的活动或出资人不一致
	ErrEventMismatch = errors.New("交易事件与提交数据不一致")
	// ErrInvalidStatus 活动当前状态不允许该操作
	ErrInvalidStatus = errors.New("活动状态不允许该操作")
)
