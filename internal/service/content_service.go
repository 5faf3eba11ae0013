package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/promo-next/internal/cache"
	"github.com/promo-next/internal/constants"
	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"
)

const defaultCatalogCacheTTL = 5 * time.Minute

// ContentService 内容项服务
type ContentService struct {
	repo       repository.ContentItemRepository
	catalogTTL time.Duration
}

// ContentServiceOptions 内容项服务配置
type ContentServiceOptions struct {
	CatalogCacheTTLSeconds int
}

// ContentItemInput 创建/更新内容项输入
type ContentItemInput struct {
	Name    string
	Payload models.JSON
}

// ContentItemListInput 内容项列表输入
type ContentItemListInput struct {
	GamespaceID uint
	Search      string
	Page        int
	PageSize    int
}

// NewContentService 创建内容项服务
func NewContentService(repo repository.ContentItemRepository, options ContentServiceOptions) *ContentService {
	ttl := defaultCatalogCacheTTL
	if options.CatalogCacheTTLSeconds > 0 {
		ttl = time.Duration(options.CatalogCacheTTLSeconds) * time.Second
	}
	return &ContentService{repo: repo, catalogTTL: ttl}
}

// CreateContentItem 创建内容项
func (s *ContentService) CreateContentItem(ctx context.Context, gamespaceID uint, input ContentItemInput) (*models.ContentItem, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPromoStorage
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrContentInvalid
	}

	existing, err := s.repo.GetByName(gamespaceID, name)
	if err != nil {
		return nil, storageError(err)
	}
	if existing != nil {
		return nil, ErrContentExists
	}

	now := time.Now().UTC()
	item := &models.ContentItem{
		GamespaceID: gamespaceID,
		Name:        name,
		Payload:     input.Payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(item); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrContentExists
		}
		return nil, storageError(err)
	}
	s.invalidateCatalog(ctx, gamespaceID)
	return item, nil
}

// GetContentItem 根据 ID 查询内容项
func (s *ContentService) GetContentItem(gamespaceID, id uint) (*models.ContentItem, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPromoStorage
	}
	item, err := s.repo.GetByID(gamespaceID, id)
	if err != nil {
		return nil, storageError(err)
	}
	if item == nil {
		return nil, ErrContentNotFound
	}
	return item, nil
}

// UpdateContentItem 更新内容项
func (s *ContentService) UpdateContentItem(ctx context.Context, gamespaceID, id uint, input ContentItemInput) (*models.ContentItem, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPromoStorage
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrContentInvalid
	}

	item, err := s.repo.GetByID(gamespaceID, id)
	if err != nil {
		return nil, storageError(err)
	}
	if item == nil {
		return nil, ErrContentNotFound
	}

	item.Name = name
	item.Payload = input.Payload
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(item); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrContentExists
		}
		return nil, storageError(err)
	}
	s.invalidateCatalog(ctx, gamespaceID)
	return item, nil
}

// DeleteContentItem 删除内容项；引用它的促销码在解析时自动跳过
func (s *ContentService) DeleteContentItem(ctx context.Context, gamespaceID, id uint) error {
	if s == nil || s.repo == nil {
		return ErrPromoStorage
	}
	item, err := s.repo.GetByID(gamespaceID, id)
	if err != nil {
		return storageError(err)
	}
	if item == nil {
		return ErrContentNotFound
	}
	if err := s.repo.Delete(gamespaceID, id); err != nil {
		return storageError(err)
	}
	s.invalidateCatalog(ctx, gamespaceID)
	return nil
}

// ListContentItems 查询内容项列表
func (s *ContentService) ListContentItems(input ContentItemListInput) ([]models.ContentItem, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrPromoStorage
	}
	items, total, err := s.repo.List(repository.ContentItemListFilter{
		Page:        input.Page,
		PageSize:    input.PageSize,
		GamespaceID: input.GamespaceID,
		Search:      strings.TrimSpace(input.Search),
	})
	if err != nil {
		return nil, 0, storageError(err)
	}
	return items, total, nil
}

// Catalog 返回租户内容目录（ID → 名称），redis 缓存尽力而为
func (s *ContentService) Catalog(ctx context.Context, gamespaceID uint) (map[string]string, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPromoStorage
	}
	cacheKey := catalogCacheKey(gamespaceID)

	var cached map[string]string
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		logger.Warnw("content_catalog_cache_read_failed",
			"gamespace_id", gamespaceID,
			"error", err,
		)
	} else if hit {
		return cached, nil
	}

	items, err := s.repo.ListAll(gamespaceID)
	if err != nil {
		return nil, storageError(err)
	}
	catalog := make(map[string]string, len(items))
	for _, item := range items {
		catalog[strconv.FormatUint(uint64(item.ID), 10)] = item.Name
	}

	if err := cache.SetJSON(ctx, cacheKey, catalog, s.catalogTTL); err != nil {
		logger.Warnw("content_catalog_cache_write_failed",
			"gamespace_id", gamespaceID,
			"error", err,
		)
	}
	return catalog, nil
}

func (s *ContentService) invalidateCatalog(ctx context.Context, gamespaceID uint) {
	if err := cache.Del(ctx, catalogCacheKey(gamespaceID)); err != nil {
		logger.Warnw("content_catalog_cache_invalidate_failed",
			"gamespace_id", gamespaceID,
			"error", err,
		)
	}
}

func catalogCacheKey(gamespaceID uint) string {
	return fmt.Sprintf("%s:%d", constants.CacheKeyContentCatalogPrefix, gamespaceID)
}
