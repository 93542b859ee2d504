package handler

import (
	"net/http"

	"github.com/blues/fundsync/internal/workflow"
	"github.com/gin-gonic/gin"
)

// LifecycleHandler 活动生命周期处理器：上链、出资、结算、退款、对账
type LifecycleHandler struct {
	deploy   *workflow.DeployWorkflow
	pledge   *workflow.PledgeWorkflow
	finalize *workflow.FinalizeWorkflow
	sync     *workflow.SyncWorkflow
}

// NewLifecycleHandler 创建生命周期处理器
func NewLifecycleHandler(
	deploy *workflow.DeployWorkflow,
	pledge *workflow.PledgeWorkflow,
	finalize *workflow.FinalizeWorkflow,
	sync *workflow.SyncWorkflow,
) *LifecycleHandler {
	return &LifecycleHandler{
		deploy:   deploy,
		pledge:   pledge,
		finalize: finalize,
		sync:     sync,
	}
}

// DeployCampaign 活动上链
func (h *LifecycleHandler) DeployCampaign(c *gin.Context) {
	campaignId, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req DeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	campaign, err := h.deploy.Deploy(campaignId, req.CallerAddress)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动上链成功", campaign)
}

// ConfirmPledge 确认钱包端提交的出资交易
func (h *LifecycleHandler) ConfirmPledge(c *gin.Context) {
	campaignId, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ConfirmPledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.pledge.Confirm(campaignId, req.WalletAddress, req.Amount, req.TxHash)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "出资确认成功", result)
}

// SubmitPledge 服务端签名出资
func (h *LifecycleHandler) SubmitPledge(c *gin.Context) {
	campaignId, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.pledge.Run(campaignId, req.Amount)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "出资成功", result)
}

// FinalizeCampaign 创建者触发结算
func (h *LifecycleHandler) FinalizeCampaign(c *gin.Context) {
	campaignId, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	outcome, err := h.finalize.Finalize(campaignId, req.CallerAddress)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "结算成功", outcome)
}

// ClaimRefund 出资人领取退款
func (h *LifecycleHandler) ClaimRefund(c *gin.Context) {
	campaignId, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.finalize.ClaimRefund(campaignId, req.BackerAddress)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "退款成功", result)
}

// ReconcileCampaign 手动触发一次对账
func (h *LifecycleHandler) ReconcileCampaign(c *gin.Context) {
	campaignId, ok := parseIDParam(c)
	if !ok {
		return
	}

	outcome, err := h.sync.Sync(campaignId)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "对账完成", outcome)
}
