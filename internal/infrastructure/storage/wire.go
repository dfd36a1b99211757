package storage

import "github.com/google/wire"

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,                      // 提供数据库连接
	NewConceptRepository,           // 概念仓储
	NewSessionRepository,           // 开发会话仓储
	NewJobRepository,               // 分析任务仓储
	NewAnsweredQuestionRepository,  // 已回答问题仓储
)
