package public

import (
	"errors"

	"github.com/promo-next/internal/http/response"
	"github.com/promo-next/internal/metrics"
	"github.com/promo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RedeemPromoCode 玩家兑换促销码
func (h *Handler) RedeemPromoCode(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	accountID, ok := getAccountID(c)
	if !ok {
		return
	}

	result, err := h.PromoService.Redeem(gamespaceID, accountID, c.Param("code"))
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
