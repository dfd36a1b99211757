package analysis

import "github.com/google/wire"

// ProviderSet 分析引擎模块的依赖注入配置
var ProviderSet = wire.NewSet(
	NewEngineClient,
)
