package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tier 回报档位，Amount 为该档位的最低出资额
type Tier struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	CampaignID  uint            `json:"campaign_id" gorm:"not null;index"`
	Title       string          `json:"title" gorm:"not null"`
	Description string          `json:"description" gorm:"type:text"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(30,6);not null"`
	MaxBackers  int             `json:"max_backers" gorm:"default:0"`
	SortOrder   int             `json:"sort_order" gorm:"default:0"`
}
