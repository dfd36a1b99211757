package eventbus

import "github.com/google/wire"

// ProviderSet 事件总线模块的依赖注入配置
var ProviderSet = wire.NewSet(
	NewEventBus,
)
