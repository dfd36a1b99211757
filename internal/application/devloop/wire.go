package devloop

import "github.com/google/wire"

// ProviderSet 开发循环模块的依赖注入配置
var ProviderSet = wire.NewSet(
	NewRunner,
	NewJobPoller,
	NewJobService,
	NewProgressBroadcaster,
)
