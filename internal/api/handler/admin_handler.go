package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/service"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler 管理后台：零售商与标签批次
type AdminHandler struct {
	retailerSvc service.RetailerService
	batchSvc    service.QRBatchService
	pngSize     int
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(retailerSvc service.RetailerService, batchSvc service.QRBatchService, pngSize int) *AdminHandler {
	return &AdminHandler{retailerSvc: retailerSvc, batchSvc: batchSvc, pngSize: pngSize}
}

// ── 零售商 ──

// CreateRetailer 创建零售商
// POST /api/v1/admin/retailers
func (h *AdminHandler) CreateRetailer(c *gin.Context) {
	var req dto.CreateRetailerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, _ := c.Get("user_id")

	result, err := h.retailerSvc.Create(c.Request.Context(), &req, callerID.(string))
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.Created(c, result)
}

// ListRetailers 零售商列表
// GET /api/v1/admin/retailers
func (h *AdminHandler) ListRetailers(c *gin.Context) {
	var req dto.RetailerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.retailerSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetRetailer 零售商详情
// GET /api/v1/admin/retailers/:id
func (h *AdminHandler) GetRetailer(c *gin.Context) {
	result, err := h.retailerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateRetailer 更新零售商
// PUT /api/v1/admin/retailers/:id
func (h *AdminHandler) UpdateRetailer(c *gin.Context) {
	var req dto.UpdateRetailerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, _ := c.Get("user_id")

	result, err := h.retailerSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID.(string))
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteRetailer 删除零售商
// DELETE /api/v1/admin/retailers/:id
func (h *AdminHandler) DeleteRetailer(c *gin.Context) {
	callerID, _ := c.Get("user_id")

	if err := h.retailerSvc.Delete(c.Request.Context(), c.Param("id"), callerID.(string)); err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 标签批次 ──

// CreateBatch 批量生成未认领标签
// POST /api/v1/admin/qr-batches
func (h *AdminHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateQRBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, _ := c.Get("user_id")

	result, err := h.batchSvc.Create(c.Request.Context(), &req, callerID.(string))
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.Created(c, result)
}

// ListBatches 批次列表
// GET /api/v1/admin/qr-batches
func (h *AdminHandler) ListBatches(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.batchSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetBatch 批次详情（含全部标识）
// GET /api/v1/admin/qr-batches/:id
func (h *AdminHandler) GetBatch(c *gin.Context) {
	result, err := h.batchSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportBatch 下载批次清单（xlsx，内嵌二维码）
// GET /api/v1/admin/qr-batches/:id/export
func (h *AdminHandler) ExportBatch(c *gin.Context) {
	buf, filename, err := h.batchSvc.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// TagPNG 单个标签二维码
// GET /api/v1/admin/qr-codes/:identifier/png?size=512
func (h *AdminHandler) TagPNG(c *gin.Context) {
	size := h.pngSize
	if s := c.Query("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 64 || n > 2048 {
			response.BadRequest(c, 10001, "size 须在 64-2048 之间")
			return
		}
		size = n
	}

	png, err := h.batchSvc.TagPNG(c.Request.Context(), c.Param("identifier"), size)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// handleAdminError 统一处理管理后台业务错误
func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRetailerNotFound):
		response.NotFound(c, 15001, "零售商不存在")
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, 15002, "批次不存在")
	case errors.Is(err, service.ErrBatchTooLarge):
		response.BadRequest(c, 15003, "单批数量超出上限")
	case errors.Is(err, service.ErrTagNotFound):
		response.NotFound(c, 15004, "标签不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 15005, "生成导出文件失败")
	default:
		response.InternalError(c)
	}
}
