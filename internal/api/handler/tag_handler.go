package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/service"
	pkgerrors "github.com/claudialoqatr/lost-found-helper-sub000/pkg/errors"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/response"
)

// TagHandler 标签管理（持有者视角）
type TagHandler struct {
	tagSvc service.TagService
}

// NewTagHandler 创建 TagHandler
func NewTagHandler(tagSvc service.TagService) *TagHandler {
	return &TagHandler{tagSvc: tagSvc}
}

// Claim 认领标签
// POST /api/v1/tags/claim
func (h *TagHandler) Claim(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ClaimTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.tagSvc.Claim(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	response.Created(c, result)
}

// ListMine 我的标签
// GET /api/v1/tags
func (h *TagHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.TagListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.tagSvc.ListMine(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetTag 标签详情
// GET /api/v1/tags/:id
func (h *TagHandler) GetTag(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.tagSvc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateTag 修改物品信息与公开模式
// PUT /api/v1/tags/:id
func (h *TagHandler) UpdateTag(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.tagSvc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	response.OK(c, result)
}

// ReleaseTag 解除绑定
// DELETE /api/v1/tags/:id
func (h *TagHandler) ReleaseTag(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.tagSvc.Release(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleTagError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListScans 扫码记录，按时间倒序
// GET /api/v1/tags/:id/scans
func (h *TagHandler) ListScans(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ScanListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.tagSvc.ListScans(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleTagError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// handleTagError 统一处理标签模块业务错误
func (h *TagHandler) handleTagError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTagNotFound):
		response.NotFound(c, 12001, "标签不存在")
	case errors.Is(err, service.ErrTagAlreadyClaimed):
		response.Conflict(c, 12002, "标签已被认领")
	case errors.Is(err, service.ErrTagDisabled):
		response.Forbidden(c, 12003, "标签已停用")
	case errors.Is(err, service.ErrNotTagOwner):
		response.Forbidden(c, 12004, "无权操作该标签")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12005, "标签已被修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
