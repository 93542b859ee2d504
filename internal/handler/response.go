package handler

import (
	"errors"
	"net/http"

	"github.com/blues/fundsync/internal/escrow"
	"github.com/blues/fundsync/internal/store"
	"github.com/blues/fundsync/internal/workflow"
	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FailWithError 按错误类型映射HTTP状态码，链上回滚原因原样返回
func FailWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrCampaignNotFound),
		errors.Is(err, store.ErrPledgeNotFound),
		errors.Is(err, escrow.ErrCampaignNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrUnauthorized):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrDuplicatePledge),
		errors.Is(err, store.ErrAlreadyDeployed),
		errors.Is(err, workflow.ErrAlreadyFinalized),
		errors.Is(err, workflow.ErrAlreadyClaimed):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrNotDeployed),
		errors.Is(err, workflow.ErrDeadlineNotReached),
		errors.Is(err, workflow.ErrCampaignNotFailed),
		errors.Is(err, workflow.ErrNothingToRefund),
		errors.Is(err, workflow.ErrInvalidAmount),
		errors.Is(err, workflow.ErrBelowMinimumPledge),
		errors.Is(err, workflow.ErrInsufficientBalance),
		errors.Is(err, workflow.ErrTxNotSuccessful),
		errors.Is(err, workflow.ErrTxNotConfirmed),
		errors.Is(err, workflow.ErrEventMismatch),
		errors.Is(err, workflow.ErrInvalidStatus),
		errors.Is(err, escrow.ErrChainRevert):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
