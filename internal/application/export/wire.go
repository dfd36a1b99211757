package export

import "github.com/google/wire"

// ProviderSet 导出模块的依赖注入配置
var ProviderSet = wire.NewSet(
	NewRenderer,
	NewImportValidator,
	NewService,
)
