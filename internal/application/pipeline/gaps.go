package pipeline

import (
	"fmt"
	"strings"

	"github.com/conceptlab/backend/internal/domain/deliverable"
)

// missingCheck 缺失组件检查项
type missingCheck struct {
	label string
	miss  func(d *deliverable.CompiledDeliverable) bool
}

// missingChecks 九项固定顺序的结构存在性检查
// 所有未满足项的标签按检查表顺序返回
var missingChecks = []missingCheck{
	{"Core technical components and features", func(d *deliverable.CompiledDeliverable) bool {
		return len(d.TechnicalSpecification.Components) == 0
	}},
	{"System architecture definition", func(d *deliverable.CompiledDeliverable) bool {
		return d.TechnicalSpecification.Architecture == "" || d.TechnicalSpecification.Architecture == PlaceholderArchitecture
	}},
	{"Technical requirements specification", func(d *deliverable.CompiledDeliverable) bool {
		return len(d.TechnicalSpecification.Requirements) == 0
	}},
	{"Market opportunity analysis", func(d *deliverable.CompiledDeliverable) bool {
		return len(d.MarketAnalysis.Opportunities) == 0
	}},
	{"Competitive advantage assessment", func(d *deliverable.CompiledDeliverable) bool {
		return len(d.MarketAnalysis.CompetitiveAdvantages) == 0
	}},
	{"Target audience definition", func(d *deliverable.CompiledDeliverable) bool {
		return d.ProjectOverview.TargetAudience == "" || d.ProjectOverview.TargetAudience == PlaceholderAudience
	}},
	{"Concept validation results", func(d *deliverable.CompiledDeliverable) bool {
		return len(d.ValidationResults.ValidatedConcepts) == 0
	}},
	{"Implementation recommendations", func(d *deliverable.CompiledDeliverable) bool {
		return len(d.ImplementationPlan.Recommendations) == 0
	}},
	{"Defined next steps", func(d *deliverable.CompiledDeliverable) bool {
		return len(d.NextSteps) == 0
	}},
}

// GapAnalyzer 缺口分析器
// 检查编译后的文档与质量评分，输出缺失组件、薄弱章节与改进建议。
// 每次调用从头计算，不与上一次分析做增量对比
type GapAnalyzer struct {
	quality *QualityCalculator
}

// NewGapAnalyzer 创建缺口分析器
func NewGapAnalyzer(quality *QualityCalculator) *GapAnalyzer {
	return &GapAnalyzer{quality: quality}
}

// AnalyzeGaps 缺口分析
func (g *GapAnalyzer) AnalyzeGaps(d *deliverable.CompiledDeliverable) *deliverable.GapAnalysisResult {
	if d == nil {
		d = &deliverable.CompiledDeliverable{}
	}

	quality := g.quality.Analyze(d)
	missing := findMissingComponents(d)
	weak := findWeakSections(d, quality)

	return &deliverable.GapAnalysisResult{
		MissingComponents:  missing,
		WeakSections:       weak,
		EnhancementPrompts: buildEnhancementPrompts(missing, weak),
		QualityAnalysis:    quality,
		RecommendedActions: buildRecommendedActions(quality, missing),
	}
}

// findMissingComponents 按检查表顺序返回所有缺失项标签
func findMissingComponents(d *deliverable.CompiledDeliverable) []string {
	out := []string{}
	for _, check := range missingChecks {
		if check.miss(d) {
			out = append(out, check.label)
		}
	}
	return out
}

// findWeakSections 薄弱章节检查
// 质量评分阈值 + 直接结构阈值
func findWeakSections(d *deliverable.CompiledDeliverable, quality *deliverable.QualityAnalysis) []string {
	out := []string{}

	if quality.CompletenessScore < ThresholdCompleteness {
		out = append(out, "Overall project completeness needs improvement")
	}
	if quality.ClarityScore < ThresholdClarity {
		out = append(out, "Project description clarity needs improvement")
	}
	if quality.ActionabilityScore < ThresholdActionability {
		out = append(out, "Implementation plan needs more actionable detail")
	}
	if quality.MarketReadinessScore < ThresholdMarketReadiness {
		out = append(out, "Market analysis needs strengthening")
	}

	if len(d.ProjectOverview.ProblemStatement) < 50 {
		out = append(out, "Problem statement is too brief to evaluate the concept")
	}
	if len(d.ProjectOverview.SolutionSummary) < 50 {
		out = append(out, "Solution summary lacks enough detail")
	}

	return out
}

// buildEnhancementPrompts 基于缺失项与薄弱章节生成增强提示文本
func buildEnhancementPrompts(missing, weak []string) []string {
	out := []string{}
	for _, m := range missing {
		out = append(out, fmt.Sprintf("Provide details for: %s", strings.ToLower(m[:1])+m[1:]))
	}
	for _, w := range weak {
		out = append(out, fmt.Sprintf("Strengthen this area: %s", strings.ToLower(w[:1])+w[1:]))
	}
	return out
}

// buildRecommendedActions 推荐行动
// 评分触发的通用行动 + 前 3 条高优先级建议 + 缺失组件摘要行，截断为 5 条
func buildRecommendedActions(quality *deliverable.QualityAnalysis, missing []string) []string {
	actions := []string{}

	if quality.OverallScore < 60 {
		actions = append(actions, "Continue AI development iterations to enrich the concept")
	}
	if quality.CompletenessScore < ThresholdCompleteness {
		actions = append(actions, "Focus on filling structural gaps before polishing details")
	}

	highCount := 0
	for _, s := range quality.Suggestions {
		if s.Priority != deliverable.PriorityHigh {
			continue
		}
		actions = append(actions, s.Suggestion)
		highCount++
		if highCount >= 3 {
			break
		}
	}

	if len(missing) > 0 {
		names := missing
		if len(names) > 2 {
			names = names[:2]
		}
		actions = append(actions, fmt.Sprintf("Address missing components: %s", strings.Join(names, ", ")))
	}

	if len(actions) > 5 {
		actions = actions[:5]
	}
	return actions
}
