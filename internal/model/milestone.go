package model

import (
	"time"

	"gorm.io/gorm"
)

// Milestone 项目里程碑，仅作展示，不参与链上结算
type Milestone struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	CampaignID  uint       `json:"campaign_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	TargetDate  *time.Time `json:"target_date"`
	SortOrder   int        `json:"sort_order" gorm:"default:0"`
}
