package pipeline

import (
	"math"
	"strings"

	"github.com/conceptlab/backend/internal/domain/deliverable"
)

// 质量评分阈值，低于阈值的维度会触发弱项与建议
const (
	ThresholdCompleteness    = 70
	ThresholdClarity         = 70
	ThresholdActionability   = 65
	ThresholdMarketReadiness = 60
)

// QualityCalculator 质量指标计算器
// 四个独立的确定性评分函数，每次调用从头计算，无增量缓存。
// 有意保持简单的规则检查表，不做统计或学习式评分
type QualityCalculator struct{}

// NewQualityCalculator 创建质量计算器
func NewQualityCalculator() *QualityCalculator {
	return &QualityCalculator{}
}

// Analyze 计算四维评分及建议
func (q *QualityCalculator) Analyze(d *deliverable.CompiledDeliverable) *deliverable.QualityAnalysis {
	completeness := q.CompletenessScore(d)
	clarity := q.ClarityScore(d)
	actionability := q.ActionabilityScore(d)
	market := q.MarketReadinessScore(d)

	overall := int(math.Round(float64(completeness+clarity+actionability+market) / 4))

	return &deliverable.QualityAnalysis{
		CompletenessScore:    completeness,
		ClarityScore:         clarity,
		ActionabilityScore:   actionability,
		MarketReadinessScore: market,
		OverallScore:         overall,
		Suggestions:          q.buildSuggestions(d, completeness, clarity, actionability, market),
	}
}

// CompletenessScore 完整度评分
// 加权检查表覆盖五个章节，分值预算 20/25/20/20/15；
// 每个结构断言成立时计入固定分值
func (q *QualityCalculator) CompletenessScore(d *deliverable.CompiledDeliverable) int {
	if d == nil {
		return 0
	}

	earned := 0

	// 项目概览：20 分
	if len(d.ProjectOverview.ProblemStatement) >= 30 && d.ProjectOverview.ProblemStatement != PlaceholderProblem {
		earned += 8
	}
	if len(d.ProjectOverview.SolutionSummary) >= 20 && d.ProjectOverview.SolutionSummary != PlaceholderSolution {
		earned += 7
	}
	if d.ProjectOverview.TargetAudience != "" && d.ProjectOverview.TargetAudience != PlaceholderAudience {
		earned += 5
	}

	// 技术规格：25 分
	if len(d.TechnicalSpecification.Components) >= 3 {
		earned += 8
	}
	if hasHighPriorityComponent(d.TechnicalSpecification.Components) {
		earned += 5
	}
	if d.TechnicalSpecification.Architecture != "" && d.TechnicalSpecification.Architecture != PlaceholderArchitecture {
		earned += 7
	}
	if len(d.TechnicalSpecification.Requirements) >= 2 {
		earned += 5
	}

	// 市场分析：20 分
	if len(d.MarketAnalysis.Opportunities) >= 1 {
		earned += 7
	}
	if len(d.MarketAnalysis.Findings) >= 2 {
		earned += 7
	}
	if len(d.MarketAnalysis.CompetitiveAdvantages) >= 1 {
		earned += 6
	}

	// 实施计划：20 分
	if len(d.ImplementationPlan.Phases) >= 3 {
		earned += 8
	}
	if allPhasesHaveDeliverables(d.ImplementationPlan.Phases) {
		earned += 7
	}
	if len(d.ImplementationPlan.Recommendations) >= 1 {
		earned += 5
	}

	// 验证结果：15 分
	if len(d.ValidationResults.ValidatedConcepts) >= 1 {
		earned += 8
	}
	if len(d.ValidationResults.PendingValidations) >= 1 {
		earned += 7
	}

	return clampInt(earned)
}

// ClarityScore 清晰度评分
// 75 分起步，问题陈述与方案摘要的长度/关键词断言各加 5-10 分
func (q *QualityCalculator) ClarityScore(d *deliverable.CompiledDeliverable) int {
	if d == nil {
		return 0
	}

	score := 75

	problem := d.ProjectOverview.ProblemStatement
	solution := d.ProjectOverview.SolutionSummary

	if len(problem) >= 50 && problem != PlaceholderProblem {
		score += 10
	}
	if len(problem) >= 100 {
		score += 5
	}
	if len(solution) >= 50 && solution != PlaceholderSolution {
		score += 5
	}
	if containsAny(solution, []string{"provides", "enables", "will"}) {
		score += 5
	}

	return clampInt(score)
}

// ActionabilityScore 可执行性评分
// 60 分起步；每个拥有至少 2 项交付物的阶段 +8；
// 每条含 should/need/implement 的建议 +3
func (q *QualityCalculator) ActionabilityScore(d *deliverable.CompiledDeliverable) int {
	if d == nil {
		return 0
	}

	score := 60

	for _, phase := range d.ImplementationPlan.Phases {
		if len(phase.Deliverables) >= 2 {
			score += 8
		}
	}

	for _, rec := range d.ImplementationPlan.Recommendations {
		if containsAny(rec, []string{"should", "need", "implement"}) {
			score += 3
		}
	}

	return clampInt(score)
}

// MarketReadinessScore 市场就绪度评分
// 50 分起步，各市场列表长度满足阈值时加固定分
func (q *QualityCalculator) MarketReadinessScore(d *deliverable.CompiledDeliverable) int {
	if d == nil {
		return 0
	}

	score := 50

	if len(d.MarketAnalysis.Opportunities) >= 2 {
		score += 10
	}
	if len(d.MarketAnalysis.Findings) >= 3 {
		score += 10
	}
	if len(d.MarketAnalysis.CompetitiveAdvantages) >= 1 {
		score += 10
	}
	if d.ProjectOverview.TargetAudience != "" && d.ProjectOverview.TargetAudience != PlaceholderAudience {
		score += 10
	}
	if len(d.MarketAnalysis.Risks) >= 1 {
		score += 10
	}

	return clampInt(score)
}

// buildSuggestions 低于阈值的维度触发 0-2 条建议，按优先级倒序
func (q *QualityCalculator) buildSuggestions(d *deliverable.CompiledDeliverable, completeness, clarity, actionability, market int) []deliverable.Suggestion {
	suggestions := []deliverable.Suggestion{}

	if completeness < ThresholdCompleteness {
		if len(d.TechnicalSpecification.Components) < 3 {
			suggestions = append(suggestions, deliverable.Suggestion{
				Section:    "technicalSpecification",
				Suggestion: "Add more technical components to cover the core solution",
				Priority:   deliverable.PriorityHigh,
				Impact:     "Fills the largest completeness gap",
			})
		}
		if d.TechnicalSpecification.Architecture == PlaceholderArchitecture {
			suggestions = append(suggestions, deliverable.Suggestion{
				Section:    "technicalSpecification",
				Suggestion: "Define the system architecture",
				Priority:   deliverable.PriorityHigh,
				Impact:     "Anchors all technical decisions",
			})
		}
	}

	if clarity < ThresholdClarity {
		suggestions = append(suggestions, deliverable.Suggestion{
			Section:    "projectOverview",
			Suggestion: "Expand the problem statement with concrete user pain points",
			Priority:   deliverable.PriorityMedium,
			Impact:     "Makes the concept easier to evaluate",
		})
	}

	if actionability < ThresholdActionability {
		suggestions = append(suggestions, deliverable.Suggestion{
			Section:    "implementationPlan",
			Suggestion: "Add concrete deliverables to each implementation phase",
			Priority:   deliverable.PriorityHigh,
			Impact:     "Turns the plan into an executable roadmap",
		})
		suggestions = append(suggestions, deliverable.Suggestion{
			Section:    "implementationPlan",
			Suggestion: "Add actionable recommendations stating what should be implemented",
			Priority:   deliverable.PriorityMedium,
			Impact:     "Improves follow-through after handoff",
		})
	}

	if market < ThresholdMarketReadiness {
		suggestions = append(suggestions, deliverable.Suggestion{
			Section:    "marketAnalysis",
			Suggestion: "Research market opportunities and competitive landscape",
			Priority:   deliverable.PriorityMedium,
			Impact:     "Grounds the concept in market reality",
		})
		suggestions = append(suggestions, deliverable.Suggestion{
			Section:    "projectOverview",
			Suggestion: "Define the target audience",
			Priority:   deliverable.PriorityLow,
			Impact:     "Focuses validation effort",
		})
	}

	sortSuggestions(suggestions)
	return suggestions
}

// priorityRank 优先级排序权重
var priorityRank = map[deliverable.Priority]int{
	deliverable.PriorityHigh:   3,
	deliverable.PriorityMedium: 2,
	deliverable.PriorityLow:    1,
}

// sortSuggestions 按优先级倒序稳定排序
func sortSuggestions(suggestions []deliverable.Suggestion) {
	// 插入排序保持同优先级原序
	for i := 1; i < len(suggestions); i++ {
		for j := i; j > 0 && priorityRank[suggestions[j].Priority] > priorityRank[suggestions[j-1].Priority]; j-- {
			suggestions[j], suggestions[j-1] = suggestions[j-1], suggestions[j]
		}
	}
}

// hasHighPriorityComponent 是否存在高优先级组件
func hasHighPriorityComponent(components []deliverable.Component) bool {
	for _, comp := range components {
		if comp.Priority == deliverable.PriorityHigh {
			return true
		}
	}
	return false
}

// allPhasesHaveDeliverables 所有阶段是否都有交付物
func allPhasesHaveDeliverables(phases []deliverable.ImplementationPhase) bool {
	if len(phases) == 0 {
		return false
	}
	for _, phase := range phases {
		if len(phase.Deliverables) == 0 {
			return false
		}
	}
	return true
}

// containsAny 大小写不敏感的多关键词子串检查
func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// clampInt 钳制到 [0,100]
func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
