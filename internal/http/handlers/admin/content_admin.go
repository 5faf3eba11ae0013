package admin

import (
	"errors"
	"strconv"

	"github.com/promo-next/internal/http/response"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ContentItemRequest 创建/更新内容项请求
type ContentItemRequest struct {
	Name    string      `json:"name" binding:"required"`
	Payload models.JSON `json:"payload"`
}

// GetAdminContentItems 获取内容项列表
func (h *Handler) GetAdminContentItems(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	items, total, err := h.ContentService.ListContentItems(service.ContentItemListInput{
		GamespaceID: gamespaceID,
		Search:      c.Query("search"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.content_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// CreateContentItem 创建内容项
func (h *Handler) CreateContentItem(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	var req ContentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	item, err := h.ContentService.CreateContentItem(c.Request.Context(), gamespaceID, service.ContentItemInput{
		Name:    req.Name,
		Payload: req.Payload,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContentInvalid):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		case errors.Is(err, service.ErrContentExists):
			respondError(c, response.CodeBadRequest, "error.content_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.content_create_failed", err)
		}
		return
	}

	response.Success(c, item)
}

// GetAdminContentItem 获取内容项详情
func (h *Handler) GetAdminContentItem(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	item, err := h.ContentService.GetContentItem(gamespaceID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContentNotFound):
			respondError(c, response.CodeNotFound, "error.content_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.content_fetch_failed", err)
		}
		return
	}

	response.Success(c, item)
}

// UpdateContentItem 更新内容项
func (h *Handler) UpdateContentItem(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req ContentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	item, err := h.ContentService.UpdateContentItem(c.Request.Context(), gamespaceID, id, service.ContentItemInput{
		Name:    req.Name,
		Payload: req.Payload,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContentInvalid):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		case errors.Is(err, service.ErrContentNotFound):
			respondError(c, response.CodeNotFound, "error.content_not_found", nil)
		case errors.Is(err, service.ErrContentExists):
			respondError(c, response.CodeBadRequest, "error.content_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.content_update_failed", err)
		}
		return
	}

	response.Success(c, item)
}

// DeleteContentItem 删除内容项
func (h *Handler) DeleteContentItem(c *gin.Context) {
	gamespaceID, ok := getGamespaceID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.ContentService.DeleteContentItem(c.Request.Context(), gamespaceID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrContentNotFound):
			respondError(c, response.CodeNotFound, "error.content_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.content_delete_failed", err)
		}
		return
	}

	response.Success(c, nil)
}
