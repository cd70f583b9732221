package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/service"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/response"
)

// PublicHandler 拾获者扫码访问的公开接口
type PublicHandler struct {
	publicSvc service.PublicService
}

// NewPublicHandler 创建 PublicHandler
func NewPublicHandler(publicSvc service.PublicService) *PublicHandler {
	return &PublicHandler{publicSvc: publicSvc}
}

// ViewTag 扫码落地页数据；持有者本人访问不记录扫码
// GET /api/v1/public/tags/:identifier
func (h *PublicHandler) ViewTag(c *gin.Context) {
	result, err := h.publicSvc.ViewTag(
		c.Request.Context(),
		c.Param("identifier"),
		OptionalUserID(c),
		c.GetHeader("User-Agent"),
	)
	if err != nil {
		h.handlePublicError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateScanLocation 拾获者补充位置
// PATCH /api/v1/public/scans/:id/location
func (h *PublicHandler) UpdateScanLocation(c *gin.Context) {
	scanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || scanID <= 0 {
		response.BadRequest(c, 10001, "无效的扫码 ID")
		return
	}

	var req dto.UpdateScanLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.publicSvc.UpdateScanLocation(c.Request.Context(), scanID, &req); err != nil {
		h.handlePublicError(c, err)
		return
	}

	response.OK(c, nil)
}

// SendMessage 给标签持有者匿名留言
// POST /api/v1/public/tags/:identifier/messages
func (h *PublicHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.publicSvc.SendMessage(c.Request.Context(), c.Param("identifier"), &req, ClientIP(c.Request)); err != nil {
		h.handlePublicError(c, err)
		return
	}

	response.Created(c, nil)
}

// handlePublicError 统一处理公开接口业务错误
func (h *PublicHandler) handlePublicError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTagNotFound):
		response.NotFound(c, 13001, "标签不存在")
	case errors.Is(err, service.ErrTagDisabled):
		response.Forbidden(c, 13002, "标签已停用")
	case errors.Is(err, service.ErrScanNotFound):
		response.NotFound(c, 13003, "扫码记录不存在")
	case errors.Is(err, service.ErrIncompleteLocation):
		response.BadRequest(c, 13004, "经纬度必须同时提供")
	case errors.Is(err, service.ErrCaptchaFailed):
		response.Forbidden(c, 13005, "人机验证未通过")
	case errors.Is(err, service.ErrTagNotReachable):
		response.BadRequest(c, 13006, "该标签暂不接收留言")
	default:
		response.InternalError(c)
	}
}
