package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/domain/deliverable"
	"github.com/conceptlab/backend/internal/domain/session"
)

// 缺省占位文本
const (
	PlaceholderArchitecture = "Architecture to be determined based on requirements"
	PlaceholderAudience     = "To be defined through market research"
	PlaceholderProblem      = "Problem statement to be refined"
	PlaceholderSolution     = "Solution approach to be elaborated"
	PlaceholderValue        = "Value proposition to be articulated"
)

// topItemLimit 顶层综合列表的截断上限
const topItemLimit = 5

// classifyRule 有序分类规则：首个命中的关键词决定标签
// 显式规则列表保持 if/else 链的先后语义，避免悄悄改变分类行为
type classifyRule struct {
	keywords []string
	label    string
}

// typeRules 组件类型推断规则，按序首个命中生效
var typeRules = []classifyRule{
	{[]string{"service", "api", "backend"}, string(deliverable.TypeService)},
	{[]string{"interface", "ui", "screen", "dashboard", "frontend"}, string(deliverable.TypeInterface)},
	{[]string{"module", "engine", "system", "pipeline"}, string(deliverable.TypeModule)},
}

// priorityRules 优先级推断规则
// core/essential/critical 在 nice-to-have/optional/enhancement 之前检查，
// 同时包含两类关键词的描述会得到 high
var priorityRules = []classifyRule{
	{[]string{"core", "essential", "critical"}, string(deliverable.PriorityHigh)},
	{[]string{"nice-to-have", "optional", "enhancement"}, string(deliverable.PriorityLow)},
}

// marketRules 市场分析分桶规则
// 机会类关键词先于风险类先于优势类检查；命中多个分类的文本只进首个桶
var marketRules = []classifyRule{
	{[]string{"opportunity", "market gap", "demand", "growth", "potential"}, "opportunities"},
	{[]string{"risk", "threat", "challenge", "concern", "barrier"}, "risks"},
	{[]string{"advantage", "differentiat", "unique", "competitive", "edge"}, "competitiveAdvantages"},
}

// Compiler 可交付文档编译器
// 消费提取结果，组装结构化文档。编译永不报错，
// 缺失输入降级为空集合或占位文本
type Compiler struct {
	extractor *Extractor
}

// NewCompiler 创建编译器
func NewCompiler(extractor *Extractor) *Compiler {
	return &Compiler{extractor: extractor}
}

// Compile 编译可交付文档
// 对相同输入幂等：无随机性，无时钟依赖字段
func (c *Compiler) Compile(cpt *concept.Concept, data *session.DevelopmentData) *deliverable.CompiledDeliverable {
	extracted := c.extractor.Extract(data)

	components := consolidateComponents(extracted.Components)
	market := synthesizeMarketAnalysis(extracted.Research, extracted.Insights)
	plan := buildImplementationPlan(components, extracted.Refinements)
	overview := buildProjectOverview(cpt, components, extracted.Insights)
	validation := buildValidationResults(extracted.Validations, extracted.Refinements)

	return &deliverable.CompiledDeliverable{
		ProjectOverview:        overview,
		MarketAnalysis:         market,
		TechnicalSpecification: buildTechnicalSpecification(components),
		ImplementationPlan:     plan,
		ValidationResults:      validation,
		NextSteps:              buildNextSteps(components, plan),
		QualityMetrics:         deriveQualityMetrics(data, extracted),
	}
}

// classify 按序匹配关键词规则，返回首个命中的标签
// 大小写不敏感的子串搜索，尽力而为，允许误分类
func classify(text string, rules []classifyRule, fallback string) string {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label
			}
		}
	}
	return fallback
}

// consolidateComponents 按名称合并组件
// 同名组件的描述换行拼接，依赖/需求列表求并集；
// 类型与优先级对每个组件独立推断
func consolidateComponents(items []deliverable.ExtractedItem) []deliverable.Component {
	byName := make(map[string]*deliverable.Component)
	var order []string

	for _, it := range items {
		name := it.Name
		if name == "" {
			name = firstWords(it.Content, 4)
		}
		if name == "" {
			continue
		}

		existing, ok := byName[name]
		if !ok {
			byName[name] = &deliverable.Component{
				Name:                  name,
				Description:           it.Content,
				Dependencies:          dedupeStrings(it.Dependencies),
				TechnicalRequirements: dedupeStrings(it.TechnicalRequirements),
			}
			order = append(order, name)
			continue
		}

		// 同名碰撞：描述换行拼接
		if it.Content != "" && !strings.Contains(existing.Description, it.Content) {
			if existing.Description == "" {
				existing.Description = it.Content
			} else {
				existing.Description = existing.Description + "\n" + it.Content
			}
		}
		// 依赖与技术要求求并集
		if len(it.Dependencies) > 0 {
			existing.Dependencies = dedupeStrings(append(existing.Dependencies, it.Dependencies...))
		}
		if len(it.TechnicalRequirements) > 0 {
			existing.TechnicalRequirements = dedupeStrings(append(existing.TechnicalRequirements, it.TechnicalRequirements...))
		}
	}

	out := make([]deliverable.Component, 0, len(order))
	for _, name := range order {
		comp := byName[name]
		searchText := comp.Name + " " + comp.Description
		comp.Type = deliverable.ComponentType(classify(searchText, typeRules, string(deliverable.TypeFeature)))
		comp.Priority = deliverable.Priority(classify(searchText, priorityRules, string(deliverable.PriorityMedium)))
		out = append(out, *comp)
	}

	return out
}

// firstWords 取内容的前 n 个词作为名称
func firstWords(content string, n int) string {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// synthesizeMarketAnalysis 市场分析合成
// 每条调研/洞察文本按首个命中的分类测试落入单一桶
func synthesizeMarketAnalysis(research, insights []deliverable.ExtractedItem) deliverable.MarketAnalysis {
	out := deliverable.MarketAnalysis{
		Opportunities:         []string{},
		Risks:                 []string{},
		CompetitiveAdvantages: []string{},
		Findings:              []string{},
	}

	bucket := func(text string) {
		if text == "" {
			return
		}
		switch classify(text, marketRules, "findings") {
		case "opportunities":
			out.Opportunities = append(out.Opportunities, text)
		case "risks":
			out.Risks = append(out.Risks, text)
		case "competitiveAdvantages":
			out.CompetitiveAdvantages = append(out.CompetitiveAdvantages, text)
		default:
			out.Findings = append(out.Findings, text)
		}
	}

	for _, it := range research {
		bucket(it.Content)
	}
	for _, it := range insights {
		bucket(it.Content)
	}

	return out
}

// buildImplementationPlan 固定三阶段实施计划
// Foundation: 前 2 个高优先级；Core: 其余高优先级 + 前 3 个中优先级；
// Enhancement: 其余中优先级 + 前 2 个低优先级；按值去重
func buildImplementationPlan(components []deliverable.Component, refinements []deliverable.ExtractedItem) deliverable.ImplementationPlan {
	var highs, mediums, lows []string
	for _, comp := range components {
		switch comp.Priority {
		case deliverable.PriorityHigh:
			highs = append(highs, comp.Name)
		case deliverable.PriorityLow:
			lows = append(lows, comp.Name)
		default:
			mediums = append(mediums, comp.Name)
		}
	}

	foundation := takeN(highs, 2)
	core := append(skipN(highs, 2), takeN(mediums, 3)...)
	enhancement := append(skipN(mediums, 3), takeN(lows, 2)...)

	phases := []deliverable.ImplementationPhase{
		{Name: "Foundation", Duration: "4-6 weeks", Deliverables: dedupeStrings(foundation)},
		{Name: "Core Development", Duration: "8-12 weeks", Deliverables: dedupeStrings(core)},
		{Name: "Enhancement", Duration: "6-8 weeks", Deliverables: dedupeStrings(enhancement)},
	}

	recommendations := []string{}
	for _, it := range refinements {
		if it.Content == "" {
			continue
		}
		recommendations = append(recommendations, it.Content)
		if len(recommendations) >= topItemLimit {
			break
		}
	}

	return deliverable.ImplementationPlan{
		Phases:          phases,
		Recommendations: recommendations,
	}
}

// buildProjectOverview 项目概览合成
// 顶层洞察取排序后前 5 条
func buildProjectOverview(cpt *concept.Concept, components []deliverable.Component, insights []deliverable.ExtractedItem) deliverable.ProjectOverview {
	overview := deliverable.ProjectOverview{
		ProblemStatement: PlaceholderProblem,
		SolutionSummary:  PlaceholderSolution,
		TargetAudience:   PlaceholderAudience,
		ValueProposition: PlaceholderValue,
		KeyInsights:      []string{},
	}

	if cpt != nil {
		overview.ConceptName = cpt.Name
		if cpt.Description != "" {
			overview.ProblemStatement = cpt.Description
		}
	}

	// 高优先级组件驱动解决方案摘要
	var highNames []string
	for _, comp := range components {
		if comp.Priority == deliverable.PriorityHigh {
			highNames = append(highNames, comp.Name)
		}
		if len(highNames) >= topItemLimit {
			break
		}
	}
	if len(highNames) > 0 {
		overview.SolutionSummary = fmt.Sprintf("Solution built around %s", strings.Join(highNames, ", "))
	}

	for _, it := range insights {
		overview.KeyInsights = append(overview.KeyInsights, it.Content)
		if len(overview.KeyInsights) >= topItemLimit {
			break
		}
	}

	return overview
}

// buildTechnicalSpecification 技术规格合成
func buildTechnicalSpecification(components []deliverable.Component) deliverable.TechnicalSpecification {
	spec := deliverable.TechnicalSpecification{
		Architecture: PlaceholderArchitecture,
		Components:   components,
		Requirements: []string{},
	}
	if components == nil {
		spec.Components = []deliverable.Component{}
	}

	// 组件达到一定规模时生成架构描述
	var services, modules int
	for _, comp := range components {
		switch comp.Type {
		case deliverable.TypeService:
			services++
		case deliverable.TypeModule:
			modules++
		}
		spec.Requirements = append(spec.Requirements, comp.TechnicalRequirements...)
	}
	if services+modules >= 2 {
		spec.Architecture = fmt.Sprintf("Modular architecture with %d services and %d modules", services, modules)
	}

	spec.Requirements = dedupeStrings(spec.Requirements)
	return spec
}

// buildValidationResults 验证结果合成
func buildValidationResults(validations, refinements []deliverable.ExtractedItem) deliverable.ValidationResults {
	out := deliverable.ValidationResults{
		ValidatedConcepts:  []string{},
		PendingValidations: []string{},
	}

	for _, it := range validations {
		if it.Content == "" {
			continue
		}
		out.ValidatedConcepts = append(out.ValidatedConcepts, it.Content)
		if len(out.ValidatedConcepts) >= topItemLimit {
			break
		}
	}

	for _, it := range refinements {
		if it.Content == "" {
			continue
		}
		out.PendingValidations = append(out.PendingValidations, it.Content)
		if len(out.PendingValidations) >= topItemLimit {
			break
		}
	}

	return out
}

// buildNextSteps 下一步行动合成
func buildNextSteps(components []deliverable.Component, plan deliverable.ImplementationPlan) []string {
	steps := []string{}

	for _, comp := range components {
		if comp.Priority != deliverable.PriorityHigh {
			continue
		}
		steps = append(steps, fmt.Sprintf("Implement %s", comp.Name))
		if len(steps) >= 3 {
			break
		}
	}

	if len(plan.Recommendations) > 0 && len(steps) < topItemLimit {
		steps = append(steps, plan.Recommendations[0])
	}

	return dedupeStrings(steps)
}

// deriveQualityMetrics 从最近会话的基础评分派生质量指标
// 基础分 0-1 区间，按提取数据量阈值加少量奖励，×100 后钳制到 [0,100]
func deriveQualityMetrics(data *session.DevelopmentData, extracted *deliverable.ExtractedData) deliverable.QualityMetrics {
	var base session.Scores
	if latest := data.LatestSession(); latest != nil && latest.LatestScores != nil {
		base = *latest.LatestScores
	}

	completeness := base.Completeness
	clarity := base.Clarity
	actionability := base.Actionability
	market := base.MarketReadiness

	// 数据量奖励
	if len(extracted.Components) > 5 {
		completeness += 0.1
	}
	if len(extracted.Insights) > 3 {
		clarity += 0.05
	}
	if len(extracted.Refinements) > 3 {
		actionability += 0.1
	}
	if len(extracted.Research) > 5 {
		market += 0.1
	}
	if len(extracted.Validations) > 2 {
		market += 0.05
	}

	return deliverable.QualityMetrics{
		Completeness:    clampScore(completeness),
		Clarity:         clampScore(clarity),
		Actionability:   clampScore(actionability),
		MarketReadiness: clampScore(market),
	}
}

// clampScore 0-1 基础分换算为 0-100 整数
func clampScore(v float64) int {
	score := int(math.Round(v * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// takeN 取前 n 个元素
func takeN(items []string, n int) []string {
	if len(items) <= n {
		return append([]string{}, items...)
	}
	return append([]string{}, items[:n]...)
}

// skipN 跳过前 n 个元素
func skipN(items []string, n int) []string {
	if len(items) <= n {
		return []string{}
	}
	return append([]string{}, items[n:]...)
}

// dedupeStrings 按值去重，保持原序
func dedupeStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
