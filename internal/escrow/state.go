package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// CampaignState 托管合约中单个活动的即时快照，不落库
type CampaignState struct {
	CampaignID     int64          `json:"campaign_id"`
	Creator        common.Address `json:"creator"`
	Goal           *big.Int       `json:"goal"`
	TotalPledged   *big.Int       `json:"total_pledged"`
	Deadline       int64          `json:"deadline"` // unix 秒
	Finalized      bool           `json:"finalized"`
	Successful     bool           `json:"successful"`
	PlatformFeeBps int64          `json:"platform_fee_bps"`
}

// Exists 创建者为零地址视为链上不存在该活动
func (s *CampaignState) Exists() bool {
	return s != nil && s.Creator != (common.Address{})
}

// GoalDecimal 目标金额（十进制）
func (s *CampaignState) GoalDecimal() decimal.Decimal {
	return FromBaseUnits(s.Goal)
}

// TotalPledgedDecimal 已筹金额（十进制）
func (s *CampaignState) TotalPledgedDecimal() decimal.Decimal {
	return FromBaseUnits(s.TotalPledged)
}

// BackerPledge 单个出资人在托管合约中的状态
type BackerPledge struct {
	Amount           *big.Int `json:"amount"`
	HasClaimedRefund bool     `json:"has_claimed_refund"`
}

// AmountDecimal 出资金额（十进制）
func (p *BackerPledge) AmountDecimal() decimal.Decimal {
	return FromBaseUnits(p.Amount)
}

// PledgeEvent PledgeMade 事件解码结果
type PledgeEvent struct {
	CampaignID  int64          `json:"campaign_id"`
	Backer      common.Address `json:"backer"`
	Amount      *big.Int       `json:"amount"`
	TxHash      string         `json:"tx_hash"`
	BlockNumber uint64         `json:"block_number"`
}

// AmountDecimal 事件金额（十进制）
func (e *PledgeEvent) AmountDecimal() decimal.Decimal {
	return FromBaseUnits(e.Amount)
}

// FinalizedEvent CampaignFinalized 事件解码结果
type FinalizedEvent struct {
	CampaignID  int64    `json:"campaign_id"`
	Successful  bool     `json:"successful"`
	TotalAmount *big.Int `json:"total_amount"`
	TxHash      string   `json:"tx_hash"`
	BlockNumber uint64   `json:"block_number"`
}

// CreatedEvent CampaignCreated 事件解码结果
type CreatedEvent struct {
	CampaignID  int64  `json:"campaign_id"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}
