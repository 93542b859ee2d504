package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/fundsync/internal/model"
	"github.com/blues/fundsync/internal/store"
	"github.com/gin-gonic/gin"
)

// CampaignHandler 活动处理器
type CampaignHandler struct {
	store *store.CampaignStore
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(campaignStore *store.CampaignStore) *CampaignHandler {
	return &CampaignHandler{store: campaignStore}
}

// CreateCampaign 创建活动（草稿）
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	campaign := req.ToCampaign()
	if err := h.store.Create(campaign); err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "创建活动成功", campaign)
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	status := model.CampaignStatus(c.Query("status"))

	campaigns, total, err := h.store.List(status, page, pageSize)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动列表成功", ListResponse{
		Items: campaigns,
		Pagination: Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}

// GetCampaign 获取活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaignId, ok := parseIDParam(c)
	if !ok {
		return
	}

	campaign, err := h.store.GetByID(campaignId)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动详情成功", campaign)
}

// GetCampaignStats 获取活动统计信息
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	campaignId, ok := parseIDParam(c)
	if !ok {
		return
	}

	stats, err := h.store.CampaignStats(campaignId)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动统计成功", stats)
}

// GetCampaignPledges 获取活动出资记录
func (h *CampaignHandler) GetCampaignPledges(c *gin.Context) {
	campaignId, ok := parseIDParam(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	pledges, total, err := h.store.PledgesByCampaign(campaignId, page, pageSize)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取出资记录成功", ListResponse{
		Items: pledges,
		Pagination: Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}

// GetCreatorCampaigns 获取创建者的活动
func (h *CampaignHandler) GetCreatorCampaigns(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的创建者地址")
		return
	}

	campaigns, err := h.store.GetByCreator(address)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取创建者活动成功", campaigns)
}

// GetBackerPledges 获取出资人的出资记录
func (h *CampaignHandler) GetBackerPledges(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的出资人地址")
		return
	}

	pledges, err := h.store.GetByBacker(address)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取出资人记录成功", pledges)
}

// parseIDParam 解析路径中的活动ID
func parseIDParam(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return 0, false
	}
	return uint(id), true
}
