package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conceptlab/backend/internal/domain/deliverable"
)

func newTestGapAnalyzer() *GapAnalyzer {
	return NewGapAnalyzer(NewQualityCalculator())
}

func TestAnalyzeGaps_EmptyDeliverable(t *testing.T) {
	g := newTestGapAnalyzer()

	result := g.AnalyzeGaps(&deliverable.CompiledDeliverable{})
	require.NotNil(t, result)
	require.NotNil(t, result.QualityAnalysis)

	t.Run("九项检查全部缺失", func(t *testing.T) {
		assert.Len(t, result.MissingComponents, len(missingChecks))
		assert.Equal(t, "Core technical components and features", result.MissingComponents[0], "缺失项应按检查表顺序返回")
	})

	t.Run("nil输入等价于空文档", func(t *testing.T) {
		fromNil := g.AnalyzeGaps(nil)
		assert.Equal(t, result.MissingComponents, fromNil.MissingComponents)
	})
}

func TestAnalyzeGaps_RichDeliverable(t *testing.T) {
	g := newTestGapAnalyzer()

	result := g.AnalyzeGaps(richDeliverable())
	assert.Empty(t, result.MissingComponents, "完整文档不应有缺失项")
}

func TestFindMissingComponents_SingleGap(t *testing.T) {
	d := richDeliverable()
	d.TechnicalSpecification.Components = []deliverable.Component{}

	missing := findMissingComponents(d)
	assert.Contains(t, missing, "Core technical components and features")
	assert.NotContains(t, missing, "System architecture definition", "其余章节完整时不应报缺失")
}

func TestFindMissingComponents_PlaceholderCountsAsMissing(t *testing.T) {
	d := richDeliverable()
	d.TechnicalSpecification.Architecture = PlaceholderArchitecture

	missing := findMissingComponents(d)
	assert.Contains(t, missing, "System architecture definition", "占位架构文本应视为缺失")
}

func TestFindWeakSections_CompletenessThreshold(t *testing.T) {
	const label = "Overall project completeness needs improvement"

	t.Run("低于阈值触发", func(t *testing.T) {
		quality := &deliverable.QualityAnalysis{CompletenessScore: 65, ClarityScore: 100, ActionabilityScore: 100, MarketReadinessScore: 100}
		weak := findWeakSections(richDeliverable(), quality)
		assert.Contains(t, weak, label)
	})

	t.Run("达到阈值不触发", func(t *testing.T) {
		quality := &deliverable.QualityAnalysis{CompletenessScore: 75, ClarityScore: 100, ActionabilityScore: 100, MarketReadinessScore: 100}
		weak := findWeakSections(richDeliverable(), quality)
		assert.NotContains(t, weak, label)
	})
}

func TestFindWeakSections_ShortStatements(t *testing.T) {
	quality := &deliverable.QualityAnalysis{CompletenessScore: 100, ClarityScore: 100, ActionabilityScore: 100, MarketReadinessScore: 100}
	d := &deliverable.CompiledDeliverable{}
	d.ProjectOverview.ProblemStatement = "too short"
	d.ProjectOverview.SolutionSummary = "also short"

	weak := findWeakSections(d, quality)
	assert.Contains(t, weak, "Problem statement is too brief to evaluate the concept")
	assert.Contains(t, weak, "Solution summary lacks enough detail")
}

func TestBuildEnhancementPrompts(t *testing.T) {
	prompts := buildEnhancementPrompts(
		[]string{"Core technical components and features"},
		[]string{"Market analysis needs strengthening"},
	)
	require.Len(t, prompts, 2)
	assert.Equal(t, "Provide details for: core technical components and features", prompts[0], "缺失项标签首字母应转小写")
	assert.Equal(t, "Strengthen this area: market analysis needs strengthening", prompts[1])
}

func TestBuildRecommendedActions(t *testing.T) {
	g := newTestGapAnalyzer()

	t.Run("行动截断为5条", func(t *testing.T) {
		result := g.AnalyzeGaps(&deliverable.CompiledDeliverable{})
		assert.LessOrEqual(t, len(result.RecommendedActions), 5)
	})

	t.Run("低总分触发迭代建议", func(t *testing.T) {
		result := g.AnalyzeGaps(&deliverable.CompiledDeliverable{})
		assert.Equal(t, "Continue AI development iterations to enrich the concept", result.RecommendedActions[0])
	})

	t.Run("缺失项摘要最多列两项", func(t *testing.T) {
		actions := buildRecommendedActions(&deliverable.QualityAnalysis{OverallScore: 90, CompletenessScore: 90},
			[]string{"A", "B", "C"})
		require.Len(t, actions, 1)
		assert.True(t, strings.HasSuffix(actions[0], "A, B"), "摘要行只列前两个缺失项: %s", actions[0])
	})
}
