package internalapi

import "github.com/promo-next/internal/provider"

// Handler 内部服务接口处理器入口
// 说明：内部接口通过共享令牌鉴权，租户标识随请求显式传递。
type Handler struct {
	*provider.Container
}

// New 创建内部服务处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
