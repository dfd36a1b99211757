package pipeline

import (
	"math"

	"github.com/conceptlab/backend/internal/domain/deliverable"
)

// questionRule 智能问题生成规则
// ID 为规则常量：同一结构缺口总是产生同一 ID，
// 被标记已回答后该规则不会再次触发，即使缺口在后续编辑中重新出现
type questionRule struct {
	id       string
	category deliverable.QuestionCategory
	question string
	purpose  string
	priority deliverable.Priority
	impact   int
	applies  func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool
}

// questionRules 问题规则表，impact 为逐条手工赋值的 8-20 权重
var questionRules = []questionRule{
	{
		id:       "tech-components-detail",
		category: deliverable.CategoryTechnical,
		question: "What are the core technical components this concept needs, and what does each one do?",
		purpose:  "Fill out the technical specification with concrete components",
		priority: deliverable.PriorityHigh,
		impact:   20,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return len(d.TechnicalSpecification.Components) < 3
		},
	},
	{
		id:       "tech-architecture",
		category: deliverable.CategoryTechnical,
		question: "How should the components fit together architecturally?",
		purpose:  "Replace the architecture placeholder with a real design statement",
		priority: deliverable.PriorityHigh,
		impact:   18,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return d.TechnicalSpecification.Architecture == "" || d.TechnicalSpecification.Architecture == PlaceholderArchitecture
		},
	},
	{
		id:       "tech-requirements",
		category: deliverable.CategoryTechnical,
		question: "What technical requirements or constraints must the implementation satisfy?",
		purpose:  "Capture non-functional requirements early",
		priority: deliverable.PriorityMedium,
		impact:   12,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return len(d.TechnicalSpecification.Requirements) == 0
		},
	},
	{
		id:       "market-opportunity",
		category: deliverable.CategoryMarket,
		question: "What market opportunity or unmet demand does this concept address?",
		purpose:  "Ground the concept in a concrete market gap",
		priority: deliverable.PriorityHigh,
		impact:   16,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return len(d.MarketAnalysis.Opportunities) == 0
		},
	},
	{
		id:       "market-audience",
		category: deliverable.CategoryMarket,
		question: "Who exactly is the target audience, and what do they do today instead?",
		purpose:  "Define the audience so validation has a subject",
		priority: deliverable.PriorityHigh,
		impact:   15,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return d.ProjectOverview.TargetAudience == "" || d.ProjectOverview.TargetAudience == PlaceholderAudience
		},
	},
	{
		id:       "market-competition",
		category: deliverable.CategoryMarket,
		question: "What gives this concept an edge over existing alternatives?",
		purpose:  "Surface competitive advantages for the market analysis",
		priority: deliverable.PriorityMedium,
		impact:   12,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return len(d.MarketAnalysis.CompetitiveAdvantages) == 0
		},
	},
	{
		id:       "business-value",
		category: deliverable.CategoryBusiness,
		question: "What is the core value proposition in one sentence?",
		purpose:  "Sharpen the value proposition statement",
		priority: deliverable.PriorityHigh,
		impact:   17,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return d.ProjectOverview.ValueProposition == "" || d.ProjectOverview.ValueProposition == PlaceholderValue
		},
	},
	{
		id:       "business-validation",
		category: deliverable.CategoryBusiness,
		question: "What evidence validates the concept so far, and what remains unproven?",
		purpose:  "Populate the validation results section",
		priority: deliverable.PriorityMedium,
		impact:   14,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return len(d.ValidationResults.ValidatedConcepts) == 0
		},
	},
	{
		id:       "impl-roadmap",
		category: deliverable.CategoryImplementation,
		question: "What concrete deliverables belong to each implementation phase?",
		purpose:  "Make the phased plan executable",
		priority: deliverable.PriorityMedium,
		impact:   10,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return !allPhasesHaveDeliverables(d.ImplementationPlan.Phases)
		},
	},
	{
		id:       "impl-resources",
		category: deliverable.CategoryImplementation,
		question: "What team or resource constraints should shape the implementation plan?",
		purpose:  "Calibrate the plan to available capacity",
		priority: deliverable.PriorityLow,
		impact:   8,
		applies: func(d *deliverable.CompiledDeliverable, q *deliverable.QualityAnalysis) bool {
			return q.ActionabilityScore < ThresholdActionability
		},
	},
}

// QuestionPrioritizer 智能问题生成与优先级排序器
// 与缺口分析共享同一套结构信号，每次调用重新生成完整队列
type QuestionPrioritizer struct{}

// NewQuestionPrioritizer 创建问题排序器
func NewQuestionPrioritizer() *QuestionPrioritizer {
	return &QuestionPrioritizer{}
}

// Prioritize 生成并排序澄清问题
// answered 为调用方提供的已回答 ID 集合，命中的问题在排序前被过滤掉
func (p *QuestionPrioritizer) Prioritize(
	d *deliverable.CompiledDeliverable,
	quality *deliverable.QualityAnalysis,
	answered map[string]bool,
) *deliverable.QuestionPlan {
	if d == nil {
		d = &deliverable.CompiledDeliverable{}
	}
	if quality == nil {
		quality = &deliverable.QualityAnalysis{}
	}

	questions := []deliverable.SmartQuestion{}
	for _, rule := range questionRules {
		if answered[rule.id] {
			continue
		}
		if !rule.applies(d, quality) {
			continue
		}
		questions = append(questions, deliverable.SmartQuestion{
			ID:       rule.id,
			Category: rule.category,
			Question: rule.question,
			Purpose:  rule.purpose,
			Priority: rule.priority,
			Impact:   rule.impact,
		})
	}

	sortQuestions(questions)

	plan := &deliverable.QuestionPlan{
		PrioritizedQuestions:    questions,
		CompletionStrategy:      completionStrategy(quality.OverallScore, len(answered)),
		EstimatedTimeToComplete: estimateTime(len(questions), quality.OverallScore),
		TotalQuestions:          len(questions),
	}
	if len(questions) > 0 {
		plan.NextBestQuestion = &questions[0]
	}

	return plan
}

// sortQuestions 按优先级倒序、impact 倒序稳定排序
func sortQuestions(questions []deliverable.SmartQuestion) {
	for i := 1; i < len(questions); i++ {
		for j := i; j > 0 && questionLess(questions[j-1], questions[j]); j-- {
			questions[j], questions[j-1] = questions[j-1], questions[j]
		}
	}
}

// questionLess a 是否应排在 b 之后
func questionLess(a, b deliverable.SmartQuestion) bool {
	ra, rb := priorityRank[a.Priority], priorityRank[b.Priority]
	if ra != rb {
		return ra < rb
	}
	return a.Impact < b.Impact
}

// completionStrategy 完成策略决策树
// 由总分与已回答数量决定
func completionStrategy(overallScore, answeredCount int) string {
	switch {
	case overallScore >= 80:
		return "Polish: answer remaining low-impact questions to finalize the deliverable"
	case overallScore >= 60:
		return "Targeted: answer the highest-impact questions to close specific gaps"
	case answeredCount == 0:
		return "Foundation: start with the high-priority technical and market questions"
	default:
		return "Broad coverage: work through all categories to raise the overall score"
	}
}

// estimateTime 估算完成剩余问题所需分钟数
// round(min(5,remaining) + max(0,remaining-5)*0.7) * 3 * 复杂度系数
// 系数按总分分段取 1.5 / 1.2 / 1
func estimateTime(remaining, overallScore int) int {
	if remaining <= 0 {
		return 0
	}

	units := math.Min(5, float64(remaining)) + math.Max(0, float64(remaining-5))*0.7
	base := math.Round(units) * 3

	multiplier := 1.0
	switch {
	case overallScore < 50:
		multiplier = 1.5
	case overallScore < 70:
		multiplier = 1.2
	}

	return int(math.Round(base * multiplier))
}
