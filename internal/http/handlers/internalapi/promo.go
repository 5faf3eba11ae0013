package internalapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/promo-next/internal/http/response"
	"github.com/promo-next/internal/metrics"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GeneratePromoCodesRequest 批量生成促销码请求
type GeneratePromoCodesRequest struct {
	Gamespace  uint                 `json:"gamespace" binding:"required"`
	CodesCount int                  `json:"codes_count" binding:"required"`
	Amount     int64                `json:"amount"`
	Contents   models.ContentBundle `json:"contents"`
	Expires    time.Time            `json:"expires"`
}

// GeneratePromoCodes 批量生成促销码
func (h *Handler) GeneratePromoCodes(c *gin.Context) {
	var req GeneratePromoCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	keys, err := h.PromoService.GenerateCodes(req.Gamespace, service.GeneratePromoCodesInput{
		Count:     req.CodesCount,
		Uses:      req.Amount,
		Contents:  req.Contents,
		ExpiresAt: req.Expires,
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

// RedeemPromoCodeRequest 内部兑换请求
type RedeemPromoCodeRequest struct {
	Gamespace uint   `json:"gamespace" binding:"required"`
	Account   string `json:"account" binding:"required"`
	Key       string `json:"key" binding:"required"`
}

// RedeemPromoCode 代表指定账号兑换促销码
func (h *Handler) RedeemPromoCode(c *gin.Context) {
	var req RedeemPromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.PromoService.Redeem(req.Gamespace, req.Account, req.Key)
	if err != nil {
		metrics.ObserveRedeemOutcome(redeemOutcome(err))
		switch {
		case errors.Is(err, service.ErrPromoKeyInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_key_invalid", nil)
		case errors.Is(err, service.ErrAccountInvalid):
			respondError(c, response.CodeBadRequest, "error.account_invalid", nil)
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		case errors.Is(err, service.ErrPromoExhausted):
			respondError(c, response.CodeBadRequest, "error.promo_exhausted", nil)
		case errors.Is(err, service.ErrPromoAlreadyUsed):
			respondError(c, response.CodeBadRequest, "error.promo_already_used", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_redeem_failed", err)
		}
		return
	}

	metrics.ObserveRedeemOutcome("success")
	response.Success(c, gin.H{
		"result": result,
	})
}

func redeemOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrPromoKeyInvalid), errors.Is(err, service.ErrAccountInvalid):
		return "invalid"
	case errors.Is(err, service.ErrPromoNotFound):
		return "not_found"
	case errors.Is(err, service.ErrPromoExhausted):
		return "exhausted"
	case errors.Is(err, service.ErrPromoAlreadyUsed):
		return "already_used"
	default:
		return "error"
	}
}

// GetPromoCodeInfo 按促销码查询基本信息
func (h *Handler) GetPromoCodeInfo(c *gin.Context) {
	gamespaceID, ok := parseGamespaceQuery(c)
	if !ok {
		return
	}

	code, err := h.PromoService.FindPromoCodeByKey(gamespaceID, c.Query("key"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoKeyInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_key_invalid", nil)
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"code": gin.H{
			"id":       code.ID,
			"expires":  code.ExpiresAt,
			"contents": code.Contents,
			"amount":   code.RemainingUses,
		},
	})
}

// GetPromoUsages 查询促销码的兑换账号列表
func (h *Handler) GetPromoUsages(c *gin.Context) {
	gamespaceID, ok := parseGamespaceQuery(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	usages, _, listErr := h.PromoService.ListPromoUsages(gamespaceID, uint(id), 0, 0)
	if listErr != nil {
		switch {
		case errors.Is(listErr, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_fetch_failed", listErr)
		}
		return
	}

	users := make([]string, 0, len(usages))
	for _, usage := range usages {
		users = append(users, usage.AccountID)
	}
	response.Success(c, gin.H{
		"users": users,
	})
}
