package public

import "github.com/promo-next/internal/provider"

// Handler 玩家侧接口处理器入口
// 说明：该处理器仅用于携带玩家 JWT 的公开 API。
type Handler struct {
	*provider.Container
}

// New 创建玩家侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
