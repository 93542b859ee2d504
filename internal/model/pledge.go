package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pledge 出资记录，只在链上交易确认后落库
type Pledge struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	CampaignID    uint            `json:"campaign_id" gorm:"not null;index"`
	BackerAddress string          `json:"backer_address" gorm:"not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(30,6);not null"`
	Currency      string          `json:"currency" gorm:"default:'USDC'"`
	Status        PledgeStatus    `json:"status" gorm:"default:'confirmed'"`
	TxHash        string          `json:"tx_hash" gorm:"uniqueIndex;not null"`
	BlockNumber   uint64          `json:"block_number"`
	RefundTxHash  string          `json:"refund_tx_hash"`

	// 关联
	Campaign Campaign `json:"campaign,omitempty" gorm:"foreignKey:CampaignID"`
}

// PledgeStatus 出资状态
type PledgeStatus string

const (
	PledgeStatusConfirmed PledgeStatus = "confirmed" // 已确认
	PledgeStatusRefunded  PledgeStatus = "refunded"  // 已退款
)
