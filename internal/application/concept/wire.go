package concept

import "github.com/google/wire"

// ProviderSet 概念模块的依赖注入配置
var ProviderSet = wire.NewSet(
	NewService,
	NewSessionService,
)
