package deliverable

// ItemKind 提取条目类别
type ItemKind string

const (
	// KindComponent 技术组件
	KindComponent ItemKind = "component"
	// KindResearch 调研发现
	KindResearch ItemKind = "research"
	// KindValidation 验证结论
	KindValidation ItemKind = "validation"
	// KindRefinement 精炼改进
	KindRefinement ItemKind = "refinement"
	// KindInsight 洞察
	KindInsight ItemKind = "insight"
)

// ExtractedItem 归一化后的提取条目
type ExtractedItem struct {
	Name                  string   `json:"name,omitempty"`
	Content               string   `json:"content"`
	SessionID             string   `json:"sessionId"`
	Stage                 string   `json:"stage"`
	Iteration             int      `json:"iteration"`
	Timestamp             int64    `json:"timestamp"` // Unix 毫秒时间戳
	Kind                  ItemKind `json:"kind"`
	Source                string   `json:"source,omitempty"` // llm_response 表示来自自由文本扫描
	Dependencies          []string `json:"dependencies,omitempty"`
	TechnicalRequirements []string `json:"technicalRequirements,omitempty"`
}

// ExtractedData 提取步骤的输出，五个按优先级排序的条目列表
type ExtractedData struct {
	Components  []ExtractedItem `json:"components"`
	Research    []ExtractedItem `json:"research"`
	Validations []ExtractedItem `json:"validations"`
	Refinements []ExtractedItem `json:"refinements"`
	Insights    []ExtractedItem `json:"insights"`
}

// ComponentType 组件类型，由名称/描述的关键词推断
type ComponentType string

const (
	TypeFeature   ComponentType = "feature"
	TypeModule    ComponentType = "module"
	TypeService   ComponentType = "service"
	TypeInterface ComponentType = "interface"
)

// Priority 优先级
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Component 可交付文档中的技术组件
type Component struct {
	Name                  string        `json:"name"`
	Description           string        `json:"description"`
	Type                  ComponentType `json:"type"`
	Priority              Priority      `json:"priority"`
	Dependencies          []string      `json:"dependencies"`
	TechnicalRequirements []string      `json:"technicalRequirements"`
}

// ProjectOverview 项目概览章节
type ProjectOverview struct {
	ConceptName      string   `json:"conceptName"`
	ProblemStatement string   `json:"problemStatement"`
	SolutionSummary  string   `json:"solutionSummary"`
	TargetAudience   string   `json:"targetAudience"`
	ValueProposition string   `json:"valueProposition"`
	KeyInsights      []string `json:"keyInsights"`
}

// MarketAnalysis 市场分析章节
// 每条调研文本只落入首个命中的分类桶
type MarketAnalysis struct {
	Opportunities         []string `json:"opportunities"`
	Risks                 []string `json:"risks"`
	CompetitiveAdvantages []string `json:"competitiveAdvantages"`
	Findings              []string `json:"findings"`
}

// TechnicalSpecification 技术规格章节
type TechnicalSpecification struct {
	Architecture string      `json:"architecture"`
	Components   []Component `json:"components"`
	Requirements []string    `json:"requirements"`
}

// ImplementationPhase 实施阶段
type ImplementationPhase struct {
	Name         string   `json:"name"`
	Duration     string   `json:"duration"`
	Deliverables []string `json:"deliverables"`
}

// ImplementationPlan 实施计划章节，固定三阶段模板
type ImplementationPlan struct {
	Phases          []ImplementationPhase `json:"phases"`
	Recommendations []string              `json:"recommendations"`
}

// ValidationResults 验证结果章节
type ValidationResults struct {
	ValidatedConcepts  []string `json:"validatedConcepts"`
	PendingValidations []string `json:"pendingValidations"`
}

// QualityMetrics 编译时从会话评分推导的基础指标，0-100 整数
type QualityMetrics struct {
	Completeness    int `json:"completeness"`
	Clarity         int `json:"clarity"`
	Actionability   int `json:"actionability"`
	MarketReadiness int `json:"marketReadiness"`
}

// CompiledDeliverable 编译产出的结构化可交付文档
// 一次编译调用构建完成后不再原地修改；增强流程整体替换子对象
type CompiledDeliverable struct {
	ProjectOverview        ProjectOverview        `json:"projectOverview"`
	MarketAnalysis         MarketAnalysis         `json:"marketAnalysis"`
	TechnicalSpecification TechnicalSpecification `json:"technicalSpecification"`
	ImplementationPlan     ImplementationPlan     `json:"implementationPlan"`
	ValidationResults      ValidationResults      `json:"validationResults"`
	NextSteps              []string               `json:"nextSteps"`
	QualityMetrics         QualityMetrics         `json:"qualityMetrics"`
}

// Suggestion 改进建议
type Suggestion struct {
	Section    string   `json:"section"`
	Suggestion string   `json:"suggestion"`
	Priority   Priority `json:"priority"`
	Impact     string   `json:"impact"`
}

// QualityAnalysis 四维质量评分 + 建议
type QualityAnalysis struct {
	CompletenessScore    int          `json:"completenessScore"`
	ClarityScore         int          `json:"clarityScore"`
	ActionabilityScore   int          `json:"actionabilityScore"`
	MarketReadinessScore int          `json:"marketReadinessScore"`
	OverallScore         int          `json:"overallScore"`
	Suggestions          []Suggestion `json:"suggestions"`
}

// GapAnalysisResult 缺口分析结果，派生数据不做持久化
type GapAnalysisResult struct {
	MissingComponents  []string         `json:"missingComponents"`
	WeakSections       []string         `json:"weakSections"`
	EnhancementPrompts []string         `json:"enhancementPrompts"`
	QualityAnalysis    *QualityAnalysis `json:"qualityAnalysis"`
	RecommendedActions []string         `json:"recommendedActions"`
}

// QuestionCategory 问题分类
type QuestionCategory string

const (
	CategoryTechnical      QuestionCategory = "technical"
	CategoryMarket         QuestionCategory = "market"
	CategoryBusiness       QuestionCategory = "business"
	CategoryImplementation QuestionCategory = "implementation"
)

// SmartQuestion 针对特定缺口生成的澄清问题
// ID 由触发规则决定，同一结构性缺口总是产生同一 ID
type SmartQuestion struct {
	ID       string           `json:"id"`
	Category QuestionCategory `json:"category"`
	Question string           `json:"question"`
	Purpose  string           `json:"purpose"`
	Priority Priority         `json:"priority"`
	Impact   int              `json:"impact"`
}

// QuestionPlan 问题优先级排序结果
type QuestionPlan struct {
	PrioritizedQuestions    []SmartQuestion `json:"prioritizedQuestions"`
	NextBestQuestion        *SmartQuestion  `json:"nextBestQuestion,omitempty"`
	CompletionStrategy      string          `json:"completionStrategy"`
	EstimatedTimeToComplete int             `json:"estimatedTimeToComplete"` // 分钟
	TotalQuestions          int             `json:"totalQuestions"`
}

// QuestionAnswer 用户对智能问题的回答，增强调用的输入
type QuestionAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}
