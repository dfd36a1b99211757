package websocket

import "github.com/google/wire"

// ProviderSet WebSocket 模块的依赖注入配置
var ProviderSet = wire.NewSet(
	NewHub,
)
