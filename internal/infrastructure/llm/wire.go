package llm

import "github.com/google/wire"

// ProviderSet 增强服务模块的依赖注入配置
var ProviderSet = wire.NewSet(
	NewEnhancerClient,
)
