package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/fundsync/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrCampaignNotFound 本地库中不存在该活动
	ErrCampaignNotFound = errors.New("活动不存在")
	// ErrDuplicatePledge 交易哈希已入账，重放直接拒绝
	ErrDuplicatePledge = errors.New("该交易哈希的出资记录已存在")
	// ErrAlreadyDeployed 链上活动ID只允许写入一次
	ErrAlreadyDeployed = errors.New("活动已绑定链上ID")
)

// CampaignStore 活动记录存储
type CampaignStore struct {
	db *gorm.DB
}

// NewCampaignStore 创建活动记录存储
func NewCampaignStore(db *gorm.DB) *CampaignStore {
	return &CampaignStore{db: db}
}

// Create 创建活动（草稿）
func (s *CampaignStore) Create(campaign *model.Campaign) error {
	if err := s.validateCampaign(campaign); err != nil {
		return err
	}

	// 新活动统一从草稿开始，资金状态归零
	campaign.Status = model.CampaignStatusDraft
	campaign.RaisedAmount = decimal.Zero
	campaign.BackersCount = 0
	campaign.BlockchainCampaignID = nil

	if err := s.db.Create(campaign).Error; err != nil {
		return fmt.Errorf("创建活动失败: %w", err)
	}

	return nil
}

// GetByID 获取活动详情
func (s *CampaignStore) GetByID(id uint) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := s.db.Preload("Tiers").
		Preload("Milestones").
		First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("获取活动详情失败: %w", err)
	}

	return &campaign, nil
}

// GetByBlockchainID 按链上活动ID获取活动
func (s *CampaignStore) GetByBlockchainID(blockchainId int64) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := s.db.Where("blockchain_campaign_id = ?", blockchainId).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("按链上ID获取活动失败: %w", err)
	}

	return &campaign, nil
}

// List 获取活动列表
func (s *CampaignStore) List(status model.CampaignStatus, page, pageSize int) ([]model.Campaign, int64, error) {
	var campaigns []model.Campaign
	var total int64

	query := s.db.Model(&model.Campaign{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&campaigns).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动列表失败: %w", err)
	}

	return campaigns, total, nil
}

// GetByCreator 获取创建者的所有活动
func (s *CampaignStore) GetByCreator(creatorAddress string) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	if err := s.db.Where("creator_address = ?", creatorAddress).
		Order("created_at DESC").
		Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("获取创建者活动失败: %w", err)
	}

	return campaigns, nil
}

// GetByBacker 获取出资人的所有出资记录（含活动）
func (s *CampaignStore) GetByBacker(backerAddress string) ([]model.Pledge, error) {
	var pledges []model.Pledge
	if err := s.db.Preload("Campaign").
		Where("backer_address = ?", backerAddress).
		Order("created_at DESC").
		Find(&pledges).Error; err != nil {
		return nil, fmt.Errorf("获取出资人记录失败: %w", err)
	}

	return pledges, nil
}

// ListReconcilable 获取需要对账的活动：已上链且处于非终态
func (s *CampaignStore) ListReconcilable(limit int) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	if err := s.db.Where("blockchain_campaign_id IS NOT NULL AND status IN ?",
		model.ReconcilableStatuses()).
		Order("updated_at ASC").
		Limit(limit).
		Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("获取待对账活动失败: %w", err)
	}

	return campaigns, nil
}

// BlockchainUpdate 链上数据的稀疏更新，nil 字段不写入
type BlockchainUpdate struct {
	BlockchainCampaignID *int64
	DeployTxHash         *string
	StartDate            *time.Time
	EndDate              *time.Time
	Status               *model.CampaignStatus
	RaisedAmount         *decimal.Decimal
}

// UpdateBlockchainData 稀疏更新链上字段，不覆盖未提供的字段；
// 绑定链上ID的写入带 IS NULL 守卫，只允许成功一次
func (s *CampaignStore) UpdateBlockchainData(id uint, update BlockchainUpdate) error {
	fields := map[string]interface{}{}
	if update.DeployTxHash != nil {
		fields["deploy_tx_hash"] = *update.DeployTxHash
	}
	if update.StartDate != nil {
		fields["start_date"] = *update.StartDate
	}
	if update.EndDate != nil {
		fields["end_date"] = *update.EndDate
	}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if update.RaisedAmount != nil {
		fields["raised_amount"] = *update.RaisedAmount
	}

	if update.BlockchainCampaignID != nil {
		fields["blockchain_campaign_id"] = *update.BlockchainCampaignID
		result := s.db.Model(&model.Campaign{}).
			Where("id = ? AND blockchain_campaign_id IS NULL", id).
			Updates(fields)
		if result.Error != nil {
			return fmt.Errorf("更新链上数据失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyDeployed
		}
		return nil
	}

	if len(fields) == 0 {
		return nil
	}

	if err := s.db.Model(&model.Campaign{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("更新链上数据失败: %w", err)
	}

	return nil
}

// validateCampaign 验证活动数据
func (s *CampaignStore) validateCampaign(campaign *model.Campaign) error {
	if campaign.Title == "" {
		return errors.New("活动标题不能为空")
	}
	if campaign.CreatorAddress == "" {
		return errors.New("创建者地址不能为空")
	}
	if !campaign.GoalAmount.IsPositive() {
		return errors.New("目标金额必须大于0")
	}
	if campaign.DurationDays <= 0 {
		return errors.New("众筹天数必须大于0")
	}
	return nil
}
