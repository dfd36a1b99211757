package deliverable

import "github.com/google/wire"

// ProviderSet 可交付文档模块的依赖注入配置
var ProviderSet = wire.NewSet(
	NewService,
)
