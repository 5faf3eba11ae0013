package internalapi

import (
	"github.com/promo-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContentCatalog 查询租户内容目录（ID → 名称）
func (h *Handler) GetContentCatalog(c *gin.Context) {
	gamespaceID, ok := parseGamespaceQuery(c)
	if !ok {
		return
	}

	items, err := h.ContentService.Catalog(c.Request.Context(), gamespaceID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.content_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{
		"items": items,
	})
}
