package reconcile

import (
	"errors"
	"fmt"

	"github.com/blues/fundsync/internal/escrow"
	"github.com/blues/fundsync/internal/logger"
	"github.com/blues/fundsync/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNotDeployed 活动未绑定链上ID，无法对账
var ErrNotDeployed = errors.New("活动尚未上链")

// Engine 对账引擎。链上状态是唯一权威，本地库只是可以滞后、
// 但不允许与已结算结果矛盾的读缓存。所有写入都可以从一次全新的
// 链上读取重新推导，重复调用收敛到同一结果。
type Engine struct {
	db *gorm.DB
}

// NewEngine 创建对账引擎
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Outcome 一次对账的结果
type Outcome struct {
	CampaignID   uint                 `json:"campaign_id"`
	Status       model.CampaignStatus `json:"status"`
	RaisedAmount decimal.Decimal      `json:"raised_amount"`
	Transitioned bool                 `json:"transitioned"` // 本次调用完成了终态跃迁
	Refreshed    bool                 `json:"refreshed"`    // 本次调用刷新了展示金额
}

// Apply 用链上快照校正本地活动记录。
// 终态写入是条件更新（写前复核当前状态仍在可跃迁集合内），
// 并发调用最多一个生效，其余观察到同一最终状态后静默返回。
func (e *Engine) Apply(campaignId uint, snap *escrow.CampaignState) (*Outcome, error) {
	if !snap.Exists() {
		return nil, fmt.Errorf("%w: campaign %d", escrow.ErrStaleRead, campaignId)
	}

	var campaign model.Campaign
	if err := e.db.First(&campaign, campaignId).Error; err != nil {
		return nil, fmt.Errorf("加载活动失败: %w", err)
	}
	if !campaign.IsDeployed() {
		return nil, ErrNotDeployed
	}

	totalPledged := snap.TotalPledgedDecimal()

	if snap.Finalized {
		return e.applyFinalized(&campaign, snap, totalPledged)
	}

	return e.refreshRaised(&campaign, totalPledged)
}

// applyFinalized 链上已结算：把本地记录推进到终态
func (e *Engine) applyFinalized(campaign *model.Campaign, snap *escrow.CampaignState, totalPledged decimal.Decimal) (*Outcome, error) {
	newStatus := model.CampaignStatusFailed
	if snap.Successful {
		newStatus = model.CampaignStatusSuccessful
	}

	// 条件更新：状态必须仍处于可跃迁集合，否则另一个调用方已经完成对账
	result := e.db.Model(&model.Campaign{}).
		Where("id = ? AND status IN ?", campaign.ID, model.ReconcilableStatuses()).
		Updates(map[string]interface{}{
			"status":        newStatus,
			"raised_amount": totalPledged,
		})
	if result.Error != nil {
		// 写入失败不做任何标记，下次调用从头重试
		return nil, fmt.Errorf("终态写入失败: %w", result.Error)
	}

	transitioned := result.RowsAffected > 0
	if transitioned {
		logger.Info("Campaign %d reconciled to %s, raised %s", campaign.ID, newStatus, totalPledged.String())
	} else {
		logger.Debug("Campaign %d already reconciled, no-op", campaign.ID)
	}

	// 重读落库结果，保证并发调用方观察到同一最终状态
	var current model.Campaign
	if err := e.db.First(&current, campaign.ID).Error; err != nil {
		return nil, fmt.Errorf("回读活动失败: %w", err)
	}

	return &Outcome{
		CampaignID:   current.ID,
		Status:       current.Status,
		RaisedAmount: current.RaisedAmount,
		Transitioned: transitioned,
	}, nil
}

// refreshRaised 链上未结算：仅在金额滞后时刷新展示值，不动状态
func (e *Engine) refreshRaised(campaign *model.Campaign, totalPledged decimal.Decimal) (*Outcome, error) {
	refreshed := false

	if campaign.Status == model.CampaignStatusActive && !campaign.RaisedAmount.Equal(totalPledged) {
		result := e.db.Model(&model.Campaign{}).
			Where("id = ? AND status = ? AND raised_amount <> ?",
				campaign.ID, model.CampaignStatusActive, totalPledged).
			Update("raised_amount", totalPledged)
		if result.Error != nil {
			return nil, fmt.Errorf("刷新已筹金额失败: %w", result.Error)
		}
		refreshed = result.RowsAffected > 0
		if refreshed {
			logger.Debug("Campaign %d raised amount refreshed to %s", campaign.ID, totalPledged.String())
		}
	}

	var current model.Campaign
	if err := e.db.First(&current, campaign.ID).Error; err != nil {
		return nil, fmt.Errorf("回读活动失败: %w", err)
	}

	return &Outcome{
		CampaignID:   current.ID,
		Status:       current.Status,
		RaisedAmount: current.RaisedAmount,
		Refreshed:    refreshed,
	}, nil
}
