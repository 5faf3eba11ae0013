package internalapi

import (
	"strconv"
	"strings"

	"github.com/promo-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// parseGamespaceQuery 解析 query 中的租户标识
func parseGamespaceQuery(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.Query("gamespace"))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		respondError(c, response.CodeBadRequest, "error.gamespace_invalid", nil)
		return 0, false
	}
	return uint(parsed), true
}
