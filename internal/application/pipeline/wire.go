package pipeline

import "github.com/google/wire"

// ProviderSet 编译管线 ProviderSet
var ProviderSet = wire.NewSet(
	NewExtractor,
	NewCompiler,
	NewQualityCalculator,
	NewGapAnalyzer,
	NewQuestionPrioritizer,
)
