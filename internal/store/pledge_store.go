package store

import (
	"errors"
	"fmt"

	"github.com/blues/fundsync/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrPledgeNotFound 未找到对应的出资记录
var ErrPledgeNotFound = errors.New("未找到对应的出资记录")

// InsertPledge 原子插入出资记录并累加活动已筹金额。
// 两个写入在同一事务中，要么都成功要么都失败；
// tx_hash 唯一索引保证同一笔链上出资只入账一次，重放返回 ErrDuplicatePledge。
func (s *CampaignStore) InsertPledge(pledge *model.Pledge) error {
	if err := s.validatePledge(pledge); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Pledge{}).Where("tx_hash = ?", pledge.TxHash).Count(&count).Error; err != nil {
			return fmt.Errorf("检查交易哈希失败: %w", err)
		}
		if count > 0 {
			return ErrDuplicatePledge
		}

		if err := tx.Create(pledge).Error; err != nil {
			return fmt.Errorf("创建出资记录失败: %w", err)
		}

		// 相对增量写，避免并发确认时丢更新
		result := tx.Model(&model.Campaign{}).
			Where("id = ?", pledge.CampaignID).
			Update("raised_amount", gorm.Expr("raised_amount + ?", pledge.Amount))
		if result.Error != nil {
			return fmt.Errorf("更新已筹金额失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCampaignNotFound
		}

		// 去重后的出资人数
		var backers int64
		if err := tx.Model(&model.Pledge{}).
			Where("campaign_id = ? AND status = ?", pledge.CampaignID, model.PledgeStatusConfirmed).
			Distinct("backer_address").
			Count(&backers).Error; err != nil {
			return fmt.Errorf("统计出资人数失败: %w", err)
		}
		if err := tx.Model(&model.Campaign{}).
			Where("id = ?", pledge.CampaignID).
			Update("backers_count", backers).Error; err != nil {
			return fmt.Errorf("更新出资人数失败: %w", err)
		}

		return nil
	})
}

// MarkPledgeRefunded 将出资人在活动中的已确认出资标记为已退款
func (s *CampaignStore) MarkPledgeRefunded(campaignId uint, backerAddress, refundTxHash string) error {
	result := s.db.Model(&model.Pledge{}).
		Where("campaign_id = ? AND backer_address = ? AND status = ?",
			campaignId, backerAddress, model.PledgeStatusConfirmed).
		Updates(map[string]interface{}{
			"status":         model.PledgeStatusRefunded,
			"refund_tx_hash": refundTxHash,
		})
	if result.Error != nil {
		return fmt.Errorf("更新出资退款状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPledgeNotFound
	}

	return nil
}

// HasPledgeTx 交易哈希是否已入账
func (s *CampaignStore) HasPledgeTx(txHash string) (bool, error) {
	var count int64
	if err := s.db.Model(&model.Pledge{}).Where("tx_hash = ?", txHash).Count(&count).Error; err != nil {
		return false, fmt.Errorf("检查交易哈希失败: %w", err)
	}
	return count > 0, nil
}

// SumConfirmedPledges 本地已确认出资的金额合计
func (s *CampaignStore) SumConfirmedPledges(campaignId uint) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.Model(&model.Pledge{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.PledgeStatusConfirmed).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("统计出资金额失败: %w", err)
	}

	return sum, nil
}

// PledgesByCampaign 分页获取活动的出资记录
func (s *CampaignStore) PledgesByCampaign(campaignId uint, page, pageSize int) ([]model.Pledge, int64, error) {
	var pledges []model.Pledge
	var total int64

	if err := s.db.Model(&model.Pledge{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取出资记录总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := s.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&pledges).Error; err != nil {
		return nil, 0, fmt.Errorf("获取出资记录失败: %w", err)
	}

	return pledges, total, nil
}

// GetBackerPledge 获取出资人在活动中的已确认出资
func (s *CampaignStore) GetBackerPledge(campaignId uint, backerAddress string) (*model.Pledge, error) {
	var pledge model.Pledge
	if err := s.db.Where("campaign_id = ? AND backer_address = ? AND status = ?",
		campaignId, backerAddress, model.PledgeStatusConfirmed).
		First(&pledge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPledgeNotFound
		}
		return nil, fmt.Errorf("获取出资记录失败: %w", err)
	}

	return &pledge, nil
}

// MinTierAmount 活动档位定义的最低出资额；没有档位时返回 false
func (s *CampaignStore) MinTierAmount(campaignId uint) (decimal.Decimal, bool, error) {
	var tier model.Tier
	err := s.db.Where("campaign_id = ?", campaignId).
		Order("amount ASC").
		First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("获取最低档位失败: %w", err)
	}

	return tier.Amount, true, nil
}

// CampaignStats 活动统计信息
func (s *CampaignStore) CampaignStats(campaignId uint) (map[string]interface{}, error) {
	campaign, err := s.GetByID(campaignId)
	if err != nil {
		return nil, err
	}

	var pledgeCount int64
	if err := s.db.Model(&model.Pledge{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.PledgeStatusConfirmed).
		Count(&pledgeCount).Error; err != nil {
		return nil, fmt.Errorf("统计出资笔数失败: %w", err)
	}

	confirmedSum, err := s.SumConfirmedPledges(campaignId)
	if err != nil {
		return nil, err
	}

	completion := decimal.Zero
	if campaign.GoalAmount.IsPositive() {
		completion = campaign.RaisedAmount.Div(campaign.GoalAmount).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return map[string]interface{}{
		"campaign_id":           campaign.ID,
		"status":                campaign.Status,
		"goal_amount":           campaign.GoalAmount,
		"raised_amount":         campaign.RaisedAmount,
		"confirmed_pledge_sum":  confirmedSum,
		"completion_percentage": completion,
		"backers_count":         campaign.BackersCount,
		"pledge_count":          pledgeCount,
		"end_date":              campaign.EndDate,
	}, nil
}

// validatePledge 验证出资数据
func (s *CampaignStore) validatePledge(pledge *model.Pledge) error {
	if pledge.CampaignID == 0 {
		return errors.New("活动ID不能为空")
	}
	if !pledge.Amount.IsPositive() {
		return errors.New("出资金额必须大于0")
	}
	if pledge.BackerAddress == "" {
		return errors.New("出资人地址不能为空")
	}
	if pledge.TxHash == "" {
		return errors.New("交易哈希不能为空")
	}
	return nil
}
