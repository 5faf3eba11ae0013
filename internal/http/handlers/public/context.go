package public

import (
	"github.com/promo-next/internal/constants"
	handlershared "github.com/promo-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getGamespaceID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, constants.ContextKeyGamespaceID, "error.gamespace_invalid", "error.gamespace_invalid")
}

func getAccountID(c *gin.Context) (string, bool) {
	return handlershared.GetContextStringWithKeys(c, constants.ContextKeyAccountID, "error.account_invalid")
}
