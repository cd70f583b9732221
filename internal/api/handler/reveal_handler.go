package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/service"
	pkgerrors "github.com/claudialoqatr/lost-found-helper-sub000/pkg/errors"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/response"
)

// 揭示接口的错误文案与前端约定一致，不做本地化
const (
	msgMissingFields   = "Missing required fields"
	msgCaptchaFailed   = "Captcha verification failed"
	msgContactNotFound = "Contact information not available"
	msgUnexpected      = "An unexpected error occurred"
)

// RevealHandler 联系方式揭示边缘函数
type RevealHandler struct {
	revealSvc service.RevealService
	logger    *zap.Logger
}

// NewRevealHandler 创建 RevealHandler
func NewRevealHandler(revealSvc service.RevealService, logger *zap.Logger) *RevealHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevealHandler{revealSvc: revealSvc, logger: logger}
}

// RevealContact 校验人机验证后返回标签持有者联系方式
// POST /functions/v1/reveal-contact
func (h *RevealHandler) RevealContact(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("reveal-contact panic", zap.Any("panic", r))
			response.FunctionError(c, http.StatusInternalServerError, msgUnexpected)
		}
	}()

	var req dto.RevealContactRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.HasRequiredFields() {
		response.FunctionError(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	contact, err := h.revealSvc.Reveal(c.Request.Context(), &req, ClientIP(c.Request))
	if err != nil {
		h.handleRevealError(c, err)
		return
	}

	response.FunctionJSON(c, dto.RevealContactResponse{Success: true, Contact: contact})
}

// handleRevealError 揭示错误到 HTTP 状态的映射
func (h *RevealHandler) handleRevealError(c *gin.Context, err error) {
	var procErr *pkgerrors.RevealProcedureError
	switch {
	case errors.Is(err, service.ErrCaptchaFailed):
		response.FunctionError(c, http.StatusForbidden, msgCaptchaFailed)
	case errors.Is(err, service.ErrContactNotAvailable):
		response.FunctionError(c, http.StatusNotFound, msgContactNotFound)
	case errors.As(err, &procErr):
		if procErr.Kind == pkgerrors.RevealKindRateLimited {
			response.FunctionError(c, http.StatusTooManyRequests, procErr.Message)
			return
		}
		response.FunctionError(c, http.StatusInternalServerError, procErr.Message)
	default:
		h.logger.Error("reveal-contact 未预期错误", zap.Error(err))
		response.FunctionError(c, http.StatusInternalServerError, msgUnexpected)
	}
}

// ClientIP 按 X-Forwarded-For 首跳、X-Real-IP、CF-Connecting-IP 顺序取调用方 IP
// 均缺失时返回 service.UnknownClientIP，不因取不到 IP 而失败
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	for _, name := range []string{"X-Real-IP", "CF-Connecting-IP"} {
		if ip := strings.TrimSpace(r.Header.Get(name)); ip != "" {
			return ip
		}
	}
	return service.UnknownClientIP
}
