package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Campaign 众筹活动模型，raised_amount/status 由链上托管合约状态驱动
type Campaign struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// 基本信息
	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`
	Story       string `json:"story" gorm:"type:text"`
	Category    string `json:"category"`
	Tags        string `json:"tags"`
	CoverImage  string `json:"cover_image"`
	Gallery     string `json:"gallery" gorm:"type:text"`
	VideoURL    string `json:"video_url"`

	// 众筹条款，创建后不可变
	GoalAmount   decimal.Decimal `json:"goal_amount" gorm:"type:decimal(30,6);not null"`
	Currency     string          `json:"currency" gorm:"default:'USDC'"`
	DurationDays int             `json:"duration_days" gorm:"not null"`
	StartDate    *time.Time      `json:"start_date"`
	EndDate      *time.Time      `json:"end_date"`

	// 资金状态
	RaisedAmount decimal.Decimal `json:"raised_amount" gorm:"type:decimal(30,6);default:0"`
	BackersCount int             `json:"backers_count" gorm:"default:0"`

	// 状态
	Status CampaignStatus `json:"status" gorm:"default:'draft'"`

	// 创建者信息
	CreatorAddress string `json:"creator_address" gorm:"not null"`
	CreatorName    string `json:"creator_name"`

	// 区块链信息，BlockchainCampaignID 只允许部署流程写入一次
	BlockchainCampaignID *int64 `json:"blockchain_campaign_id" gorm:"uniqueIndex"`
	DeployTxHash         string `json:"deploy_tx_hash"`

	// 关联
	Tiers      []Tier      `json:"tiers,omitempty" gorm:"foreignKey:CampaignID"`
	Milestones []Milestone `json:"milestones,omitempty" gorm:"foreignKey:CampaignID"`
	Pledges    []Pledge    `json:"pledges,omitempty" gorm:"foreignKey:CampaignID"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusDraft      CampaignStatus = "draft"      // 草稿
	CampaignStatusReview     CampaignStatus = "review"     // 审核中
	CampaignStatusActive     CampaignStatus = "active"     // 进行中
	CampaignStatusSuccessful CampaignStatus = "successful" // 成功
	CampaignStatusFailed     CampaignStatus = "failed"     // 失败
	CampaignStatusCancelled  CampaignStatus = "cancelled"  // 已取消
)

// IsDeployed 活动是否已上链
func (c *Campaign) IsDeployed() bool {
	return c.BlockchainCampaignID != nil
}

// ReconcilableStatuses 对账引擎允许发生终态跃迁的状态集合
func ReconcilableStatuses() []CampaignStatus {
	return []CampaignStatus{CampaignStatusDraft, CampaignStatusActive}
}
