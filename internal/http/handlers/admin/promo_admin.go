package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/promo-next/internal/http/response"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PromoCodeRequest 创建/更新促销码请求
type PromoCodeRequest struct {
	Code      string               `json:"code"`
	Contents  models.ContentBundle `json:"contents" binding:"required"`
	Uses      int64                `json:"uses"`
	ExpiresAt string               `json:"expires_at"`
}

// GeneratePromoCodesRequest 批量生成促销码请求
type GeneratePromoCodesRequest struct {
	Count     int                  `json:"count" binding:"required"`
	Contents  models.ContentBundle `json:"contents" binding:"required"`
	Uses      int64                `json:"uses"`
	ExpiresAt string               `json:"expires_at"`
}

// GetAdminPromoCodes 获取促销码列表
func (h *Handler) GetAdminPromoCodes(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	onlyUsable := strings.EqualFold(strings.TrimSpace(c.Query("only_usable")), "true")
	codes, total, err := h.PromoService.ListPromoCodes(service.PromoCodeListInput{
		GamespaceID: gamespaceID,
		Code:        c.Query("code"),
		OnlyUsable:  onlyUsable,
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, codes, response.BuildPagination(page, pageSize, total))
}

// CreatePromoCode 创建促销码；未提供 code 时随机生成
func (h *Handler) CreatePromoCode(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	expiresAt, err := parseTimeNullable(strings.TrimSpace(req.ExpiresAt))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var code *models.PromoCode
	if strings.TrimSpace(req.Code) == "" {
		code, err = h.generateSinglePromoCode(gamespaceID, req, expiresAt)
	} else {
		code, err = h.PromoService.CreatePromoCode(gamespaceID, service.PromoCodeInput{
			Code:      req.Code,
			Contents:  req.Contents,
			Uses:      req.Uses,
			ExpiresAt: timeOrZero(expiresAt),
		})
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoKeyInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_key_invalid", nil)
		case errors.Is(err, service.ErrPromoContentsInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_contents_invalid", nil)
		case errors.Is(err, service.ErrPromoExists):
			respondError(c, response.CodeBadRequest, "error.promo_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_create_failed", err)
		}
		return
	}

	response.Success(c, code)
}

func (h *Handler) generateSinglePromoCode(gamespaceID uint, req PromoCodeRequest, expiresAt *time.Time) (*models.PromoCode, error) {
	keys, err := h.PromoService.GenerateCodes(gamespaceID, service.GeneratePromoCodesInput{
		Count:     1,
		Uses:      req.Uses,
		Contents:  req.Contents,
		ExpiresAt: timeOrZero(expiresAt),
	})
	if err != nil {
		return nil, err
	}
	return h.PromoService.FindPromoCodeByKey(gamespaceID, keys[0])
}

// GeneratePromoCodes 批量生成促销码
func (h *Handler) GeneratePromoCodes(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	var req GeneratePromoCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	expiresAt, err := parseTimeNullable(strings.TrimSpace(req.ExpiresAt))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	keys, err := h.PromoService.GenerateCodes(gamespaceID, service.GeneratePromoCodesInput{
		Count:     req.Count,
		Uses:      req.Uses,
		Contents:  req.Contents,
		ExpiresAt: timeOrZero(expiresAt),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoCountInvalid):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		case errors.Is(err, service.ErrPromoContentsInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_contents_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_generate_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"keys": keys,
	})
}

// GetAdminPromoCode 获取促销码详情（含兑换记录）
func (h *Handler) GetAdminPromoCode(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	code, err := h.PromoService.GetPromoCode(gamespaceID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		}
		return
	}

	usages, _, err := h.PromoService.ListPromoUsages(gamespaceID, id, 0, 0)
	if err != nil {
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{
		"code":   code,
		"usages": usages,
	})
}

// UpdatePromoCode 更新促销码
func (h *Handler) UpdatePromoCode(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	expiresAt, err := parseTimeNullable(strings.TrimSpace(req.ExpiresAt))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	code, err := h.PromoService.UpdatePromoCode(gamespaceID, id, service.PromoCodeInput{
		Code:      req.Code,
		Contents:  req.Contents,
		Uses:      req.Uses,
		ExpiresAt: timeOrZero(expiresAt),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoKeyInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_key_invalid", nil)
		case errors.Is(err, service.ErrPromoContentsInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_contents_invalid", nil)
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		case errors.Is(err, service.ErrPromoExists):
			respondError(c, response.CodeBadRequest, "error.promo_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_update_failed", err)
		}
		return
	}

	response.Success(c, code)
}

// DeletePromoCode 删除促销码
func (h *Handler) DeletePromoCode(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.PromoService.DeletePromoCode(gamespaceID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_delete_failed", err)
		}
		return
	}

	response.Success(c, nil)
}

// GetAdminPromoUsages 获取促销码兑换记录
func (h *Handler) GetAdminPromoUsages(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	usages, total, err := h.PromoService.ListPromoUsages(gamespaceID, id, page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		}
		return
	}

	response.SuccessWithPage(c, usages, response.BuildPagination(page, pageSize, total))
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
