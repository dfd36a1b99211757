package pipeline

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/domain/deliverable"
	"github.com/conceptlab/backend/internal/domain/session"
)

func newTestCompiler() *Compiler {
	return NewCompiler(NewExtractor())
}

func TestCompile_EmptyData(t *testing.T) {
	c := newTestCompiler()
	cpt := &concept.Concept{ID: "c1", Name: "Test Concept"}

	t.Run("空开发数据返回占位文档", func(t *testing.T) {
		d := c.Compile(cpt, &session.DevelopmentData{ConceptID: "c1"})
		require.NotNil(t, d)
		assert.Empty(t, d.TechnicalSpecification.Components)
		assert.NotNil(t, d.TechnicalSpecification.Components, "组件列表应为空切片而非 nil")
		assert.Equal(t, PlaceholderArchitecture, d.TechnicalSpecification.Architecture)
		assert.Equal(t, PlaceholderAudience, d.ProjectOverview.TargetAudience)
		assert.Equal(t, "Test Concept", d.ProjectOverview.ConceptName)
	})

	t.Run("无会话时质量指标仅为基础分", func(t *testing.T) {
		d := c.Compile(cpt, &session.DevelopmentData{ConceptID: "c1"})
		assert.Equal(t, 0, d.QualityMetrics.Completeness, "无基础分也无数据奖励")
		assert.Equal(t, 0, d.QualityMetrics.Clarity)
	})

	t.Run("有基础分无奖励时指标为四舍五入的基础分", func(t *testing.T) {
		data := &session.DevelopmentData{
			ConceptID: "c1",
			Sessions: []*session.DevelopmentSession{
				{ID: "s1", LatestScores: &session.Scores{Completeness: 0.654, Clarity: 0.5}},
			},
		}
		d := c.Compile(cpt, data)
		assert.Equal(t, 65, d.QualityMetrics.Completeness)
		assert.Equal(t, 50, d.QualityMetrics.Clarity)
	})
}

func TestCompile_Idempotent(t *testing.T) {
	c := newTestCompiler()
	cpt := &concept.Concept{ID: "c1", Name: "Idempotent", Description: "A concept with a reasonably long problem statement"}
	data := &session.DevelopmentData{
		ConceptID: "c1",
		Sessions: []*session.DevelopmentSession{
			{
				ID: "s1",
				Interactions: []session.Interaction{
					{
						Stage:     "analysis",
						Iteration: 2,
						Timestamp: 3000,
						Response:  "Key Insight: the market rewards simple onboarding",
						ExtractedComponents: []session.Item{
							{Name: "Auth Service", Description: "core essential login service"},
							{Name: "Billing Module", Description: "optional payments module"},
						},
						ExtractedResearch: []session.Item{
							{Content: "market gap in the SMB segment creates an opportunity"},
							{Content: "main risk is incumbent pricing pressure"},
						},
						Scores: &session.Scores{Completeness: 0.6, Clarity: 0.7},
					},
				},
				LatestScores: &session.Scores{Completeness: 0.6, Clarity: 0.7},
			},
		},
	}

	first := c.Compile(cpt, data)
	second := c.Compile(cpt, data)
	assert.True(t, reflect.DeepEqual(first, second), "相同输入应产出完全相同的文档")
}

func TestCompile_ComponentClassification(t *testing.T) {
	c := newTestCompiler()
	cpt := &concept.Concept{ID: "c1", Name: "Classify"}

	data := &session.DevelopmentData{
		ConceptID: "c1",
		Sessions: []*session.DevelopmentSession{
			{
				ID: "s1",
				Interactions: []session.Interaction{
					{
						Stage: "initial",
						ExtractedComponents: []session.Item{
							{Name: "Auth Service", Description: "core essential login"},
							{Name: "Admin Dashboard", Description: "nice-to-have reporting screen"},
							{Name: "Sync Engine", Description: "background data pipeline"},
						},
					},
				},
			},
		},
	}

	d := c.Compile(cpt, data)
	require.Len(t, d.TechnicalSpecification.Components, 3)

	byName := make(map[string]deliverable.Component)
	for _, comp := range d.TechnicalSpecification.Components {
		byName[comp.Name] = comp
	}

	auth := byName["Auth Service"]
	assert.Equal(t, deliverable.TypeService, auth.Type, "名称含 service 应推断为 service 类型")
	assert.Equal(t, deliverable.PriorityHigh, auth.Priority, "描述含 core/essential 应推断为 high")

	dashboard := byName["Admin Dashboard"]
	assert.Equal(t, deliverable.TypeInterface, dashboard.Type, "dashboard 关键词应推断为 interface")
	assert.Equal(t, deliverable.PriorityLow, dashboard.Priority, "nice-to-have 应推断为 low")

	engine := byName["Sync Engine"]
	assert.Equal(t, deliverable.TypeModule, engine.Type)
	assert.Equal(t, deliverable.PriorityMedium, engine.Priority, "无关键词时默认 medium")
}

func TestCompile_PriorityRuleOrder(t *testing.T) {
	// 同时命中 high 与 low 关键词时 high 规则先检查生效
	got := classify("a core but optional feature", priorityRules, string(deliverable.PriorityMedium))
	assert.Equal(t, string(deliverable.PriorityHigh), got)
}

func TestConsolidateComponents(t *testing.T) {
	t.Run("同名组件描述换行拼接", func(t *testing.T) {
		items := []deliverable.ExtractedItem{
			{Name: "Auth", Content: "handles login"},
			{Name: "Auth", Content: "handles token refresh"},
		}
		out := consolidateComponents(items)
		require.Len(t, out, 1)
		assert.Equal(t, "handles login\nhandles token refresh", out[0].Description)
	})

	t.Run("无名称条目取内容前四词", func(t *testing.T) {
		items := []deliverable.ExtractedItem{
			{Content: "real time sync layer for devices"},
		}
		out := consolidateComponents(items)
		require.Len(t, out, 1)
		assert.Equal(t, "real time sync layer", out[0].Name)
	})

	t.Run("完全空条目被跳过", func(t *testing.T) {
		out := consolidateComponents([]deliverable.ExtractedItem{{}})
		assert.Empty(t, out)
	})

	t.Run("同名组件依赖与技术要求求并集", func(t *testing.T) {
		items := []deliverable.ExtractedItem{
			{
				Name:                  "Auth",
				Content:               "handles login",
				Dependencies:          []string{"User Store", "Session Cache"},
				TechnicalRequirements: []string{"OAuth2 support"},
			},
			{
				Name:                  "Auth",
				Content:               "handles token refresh",
				Dependencies:          []string{"Session Cache", "Token Signer"},
				TechnicalRequirements: []string{"OAuth2 support", "p95 latency under 100ms"},
			},
		}
		out := consolidateComponents(items)
		require.Len(t, out, 1)
		assert.Equal(t, []string{"User Store", "Session Cache", "Token Signer"}, out[0].Dependencies, "并集保留首次出现顺序")
		assert.Equal(t, []string{"OAuth2 support", "p95 latency under 100ms"}, out[0].TechnicalRequirements)
	})

	t.Run("无依赖信息时字段为空切片", func(t *testing.T) {
		out := consolidateComponents([]deliverable.ExtractedItem{{Name: "Auth", Content: "login"}})
		require.Len(t, out, 1)
		assert.NotNil(t, out[0].Dependencies)
		assert.Empty(t, out[0].Dependencies)
		assert.NotNil(t, out[0].TechnicalRequirements)
	})
}

func TestCompile_TechnicalRequirementsFlow(t *testing.T) {
	c := newTestCompiler()
	cpt := &concept.Concept{ID: "c1", Name: "Requirements"}

	data := &session.DevelopmentData{
		ConceptID: "c1",
		Sessions: []*session.DevelopmentSession{
			{
				ID: "s1",
				Interactions: []session.Interaction{
					{
						Stage: "analysis",
						ExtractedComponents: []session.Item{
							{
								Name:                  "Sync Engine",
								Description:           "background data pipeline",
								Dependencies:          []string{"Event Bus"},
								TechnicalRequirements: []string{"handles 10k events per second"},
							},
							{
								Name:                  "Auth Service",
								Description:           "core login service",
								TechnicalRequirements: []string{"OAuth2 support"},
							},
						},
					},
				},
			},
		},
	}

	d := c.Compile(cpt, data)
	require.Len(t, d.TechnicalSpecification.Components, 2)

	byName := make(map[string]deliverable.Component)
	for _, comp := range d.TechnicalSpecification.Components {
		byName[comp.Name] = comp
	}
	assert.Equal(t, []string{"Event Bus"}, byName["Sync Engine"].Dependencies)
	assert.Equal(t, []string{"handles 10k events per second"}, byName["Sync Engine"].TechnicalRequirements)

	assert.Contains(t, d.TechnicalSpecification.Requirements, "handles 10k events per second",
		"组件级技术要求应汇总到规格需求列表")
	assert.Contains(t, d.TechnicalSpecification.Requirements, "OAuth2 support")
}

func TestSynthesizeMarketAnalysis(t *testing.T) {
	research := []deliverable.ExtractedItem{
		{Content: "clear market gap among small teams"},
		{Content: "biggest risk is platform dependency"},
		{Content: "our unique data set is a differentiator"},
		{Content: "users prefer annual billing"},
	}

	out := synthesizeMarketAnalysis(research, nil)
	assert.Equal(t, []string{"clear market gap among small teams"}, out.Opportunities)
	assert.Equal(t, []string{"biggest risk is platform dependency"}, out.Risks)
	assert.Equal(t, []string{"our unique data set is a differentiator"}, out.CompetitiveAdvantages)
	assert.Equal(t, []string{"users prefer annual billing"}, out.Findings, "未命中分类的文本进 findings")
}

func TestSynthesizeMarketAnalysis_SingleBucket(t *testing.T) {
	// 同时命中机会与风险关键词的文本只进首个桶
	research := []deliverable.ExtractedItem{
		{Content: "growth potential despite the regulatory risk"},
	}
	out := synthesizeMarketAnalysis(research, nil)
	assert.Len(t, out.Opportunities, 1)
	assert.Empty(t, out.Risks, "命中多个分类的文本只落入首个命中的桶")
}

func TestBuildImplementationPlan(t *testing.T) {
	components := []deliverable.Component{
		{Name: "H1", Priority: deliverable.PriorityHigh},
		{Name: "H2", Priority: deliverable.PriorityHigh},
		{Name: "H3", Priority: deliverable.PriorityHigh},
		{Name: "M1", Priority: deliverable.PriorityMedium},
		{Name: "M2", Priority: deliverable.PriorityMedium},
		{Name: "M3", Priority: deliverable.PriorityMedium},
		{Name: "M4", Priority: deliverable.PriorityMedium},
		{Name: "L1", Priority: deliverable.PriorityLow},
	}

	plan := buildImplementationPlan(components, nil)
	require.Len(t, plan.Phases, 3)

	assert.Equal(t, "Foundation", plan.Phases[0].Name)
	assert.Equal(t, []string{"H1", "H2"}, plan.Phases[0].Deliverables, "Foundation 取前 2 个高优先级")

	assert.Equal(t, "Core Development", plan.Phases[1].Name)
	assert.Equal(t, []string{"H3", "M1", "M2", "M3"}, plan.Phases[1].Deliverables, "Core 为其余高优先级加前 3 个中优先级")

	assert.Equal(t, "Enhancement", plan.Phases[2].Name)
	assert.Equal(t, []string{"M4", "L1"}, plan.Phases[2].Deliverables)
}

func TestBuildImplementationPlan_Recommendations(t *testing.T) {
	refinements := make([]deliverable.ExtractedItem, 0, 7)
	for _, content := range []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7"} {
		refinements = append(refinements, deliverable.ExtractedItem{Content: content})
	}
	plan := buildImplementationPlan(nil, refinements)
	assert.Len(t, plan.Recommendations, 5, "建议截断为前 5 条")
}

func TestDeriveQualityMetrics_Bonuses(t *testing.T) {
	data := &session.DevelopmentData{
		Sessions: []*session.DevelopmentSession{
			{ID: "s1", LatestScores: &session.Scores{Completeness: 0.5, MarketReadiness: 0.95}},
		},
	}
	extracted := &deliverable.ExtractedData{
		Components:  make([]deliverable.ExtractedItem, 6),
		Research:    make([]deliverable.ExtractedItem, 6),
		Validations: make([]deliverable.ExtractedItem, 3),
	}

	m := deriveQualityMetrics(data, extracted)
	assert.Equal(t, 60, m.Completeness, "组件超过 5 个应加 0.1 奖励")
	assert.Equal(t, 100, m.MarketReadiness, "0.95+0.1+0.05 应被钳制到 100")
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-0.2))
	assert.Equal(t, 100, clampScore(1.3))
	assert.Equal(t, 65, clampScore(0.654))
	assert.Equal(t, 66, clampScore(0.655))
}
