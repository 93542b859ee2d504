package handler

import (
	"time"

	"github.com/blues/fundsync/internal/model"
	"github.com/shopspring/decimal"
)

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Title          string             `json:"title" binding:"required"`
	Description    string             `json:"description"`
	Story          string             `json:"story"`
	Category       string             `json:"category"`
	Tags           string             `json:"tags"`
	CoverImage     string             `json:"cover_image"`
	Gallery        string             `json:"gallery"`
	VideoURL       string             `json:"video_url"`
	GoalAmount     decimal.Decimal    `json:"goal_amount" binding:"required"`
	DurationDays   int                `json:"duration_days" binding:"required"`
	CreatorAddress string             `json:"creator_address" binding:"required"`
	CreatorName    string             `json:"creator_name"`
	Tiers          []TierRequest      `json:"tiers"`
	Milestones     []MilestoneRequest `json:"milestones"`
}

// TierRequest 回报档位请求
type TierRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	MaxBackers  int             `json:"max_backers"`
	SortOrder   int             `json:"sort_order"`
}

// MilestoneRequest 里程碑请求
type MilestoneRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"target_date"`
	SortOrder   int        `json:"sort_order"`
}

// ToCampaign 转换为活动模型
func (r *CreateCampaignRequest) ToCampaign() *model.Campaign {
	campaign := &model.Campaign{
		Title:          r.Title,
		Description:    r.Description,
		Story:          r.Story,
		Category:       r.Category,
		Tags:           r.Tags,
		CoverImage:     r.CoverImage,
		Gallery:        r.Gallery,
		VideoURL:       r.VideoURL,
		GoalAmount:     r.GoalAmount,
		Currency:       "USDC",
		DurationDays:   r.DurationDays,
		CreatorAddress: r.CreatorAddress,
		CreatorName:    r.CreatorName,
	}
	for _, t := range r.Tiers {
		campaign.Tiers = append(campaign.Tiers, model.Tier{
			Title:       t.Title,
			Description: t.Description,
			Amount:      t.Amount,
			MaxBackers:  t.MaxBackers,
			SortOrder:   t.SortOrder,
		})
	}
	for _, m := range r.Milestones {
		campaign.Milestones = append(campaign.Milestones, model.Milestone{
			Title:       m.Title,
			Description: m.Description,
			TargetDate:  m.TargetDate,
			SortOrder:   m.SortOrder,
		})
	}
	return campaign
}

// DeployRequest 上链请求
type DeployRequest struct {
	CallerAddress string `json:"caller_address" binding:"required"`
}

// ConfirmPledgeRequest 出资确认请求（钱包端已提交交易）
type ConfirmPledgeRequest struct {
	WalletAddress string          `json:"wallet_address" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	TxHash        string          `json:"tx_hash" binding:"required"`
}

// PledgeRequest 服务端签名出资请求
type PledgeRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// FinalizeRequest 结算请求
type FinalizeRequest struct {
	CallerAddress string `json:"caller_address" binding:"required"`
}

// RefundRequest 退款请求
type RefundRequest struct {
	BackerAddress string `json:"backer_address" binding:"required"`
}

// ListResponse 带分页的列表响应
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}
