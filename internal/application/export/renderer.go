// Package export 实现可交付文档的导出渲染与会话导入校验
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/domain/deliverable"
)

// Format 导出格式
type Format string

const (
	// FormatMarkdown Markdown 导出
	FormatMarkdown Format = "markdown"
	// FormatJSON JSON 导出
	FormatJSON Format = "json"
	// FormatPDF PDF 导出（未实现，回退为 Markdown 并附带提示）
	FormatPDF Format = "pdf"
)

// PDFFallbackNotice PDF 回退提示文本
const PDFFallbackNotice = "PDF export is not yet available; a Markdown version has been generated instead"

// Artifact 导出产物
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
	// Notice 面向用户的提示（如 PDF 回退），为空表示无提示
	Notice string
}

// Renderer 导出渲染器
// 渲染是单向的：不存在导出产物的回读解析器
type Renderer struct{}

// NewRenderer 创建导出渲染器
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render 渲染可交付文档
// JSON 路径保证结构化往返一致；Markdown 为手工拼接的章节文本
func (r *Renderer) Render(cpt *concept.Concept, d *deliverable.CompiledDeliverable, format Format) (*Artifact, error) {
	if d == nil {
		return nil, fmt.Errorf("deliverable is nil")
	}

	baseName := "concept"
	if cpt != nil {
		baseName = cpt.ExportFileName()
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal deliverable: %w", err)
		}
		return &Artifact{
			FileName:    baseName + ".json",
			ContentType: "application/json",
			Data:        data,
		}, nil

	case FormatMarkdown:
		return &Artifact{
			FileName:    baseName + ".md",
			ContentType: "text/markdown",
			Data:        []byte(renderMarkdown(d)),
		}, nil

	case FormatPDF:
		// 已知的未实现路径：不算错误，回退为 Markdown
		return &Artifact{
			FileName:    baseName + ".md",
			ContentType: "text/markdown",
			Data:        []byte(renderMarkdown(d)),
			Notice:      PDFFallbackNotice,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// renderMarkdown 按固定章节顺序拼接 Markdown 文本
func renderMarkdown(d *deliverable.CompiledDeliverable) string {
	var b strings.Builder

	title := d.ProjectOverview.ConceptName
	if title == "" {
		title = "Concept Deliverable"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	// 项目概览
	b.WriteString("## Project Overview\n\n")
	fmt.Fprintf(&b, "**Problem**: %s\n\n", d.ProjectOverview.ProblemStatement)
	fmt.Fprintf(&b, "**Solution**: %s\n\n", d.ProjectOverview.SolutionSummary)
	fmt.Fprintf(&b, "**Target Audience**: %s\n\n", d.ProjectOverview.TargetAudience)
	fmt.Fprintf(&b, "**Value Proposition**: %s\n\n", d.ProjectOverview.ValueProposition)
	writeList(&b, "Key Insights", d.ProjectOverview.KeyInsights)

	// 市场分析
	b.WriteString("## Market Analysis\n\n")
	writeList(&b, "Opportunities", d.MarketAnalysis.Opportunities)
	writeList(&b, "Risks", d.MarketAnalysis.Risks)
	writeList(&b, "Competitive Advantages", d.MarketAnalysis.CompetitiveAdvantages)
	writeList(&b, "Findings", d.MarketAnalysis.Findings)

	// 技术规格
	b.WriteString("## Technical Specification\n\n")
	fmt.Fprintf(&b, "**Architecture**: %s\n\n", d.TechnicalSpecification.Architecture)
	if len(d.TechnicalSpecification.Components) > 0 {
		b.WriteString("### Components\n\n")
		for _, comp := range d.TechnicalSpecification.Components {
			fmt.Fprintf(&b, "- **%s** (%s, %s priority): %s\n", comp.Name, comp.Type, comp.Priority, comp.Description)
		}
		b.WriteString("\n")
	}
	writeList(&b, "Requirements", d.TechnicalSpecification.Requirements)

	// 实施计划
	b.WriteString("## Implementation Plan\n\n")
	for _, phase := range d.ImplementationPlan.Phases {
		fmt.Fprintf(&b, "### %s (%s)\n\n", phase.Name, phase.Duration)
		for _, item := range phase.Deliverables {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	writeList(&b, "Recommendations", d.ImplementationPlan.Recommendations)

	// 验证结果
	b.WriteString("## Validation Results\n\n")
	writeList(&b, "Validated", d.ValidationResults.ValidatedConcepts)
	writeList(&b, "Pending Validation", d.ValidationResults.PendingValidations)

	// 下一步
	writeSection(&b, "Next Steps", d.NextSteps)

	// 质量指标
	b.WriteString("## Quality Metrics\n\n")
	fmt.Fprintf(&b, "- Completeness: %d/100\n", d.QualityMetrics.Completeness)
	fmt.Fprintf(&b, "- Clarity: %d/100\n", d.QualityMetrics.Clarity)
	fmt.Fprintf(&b, "- Actionability: %d/100\n", d.QualityMetrics.Actionability)
	fmt.Fprintf(&b, "- Market Readiness: %d/100\n", d.QualityMetrics.MarketReadiness)

	return b.String()
}

// writeList 渲染带小标题的条目列表，空列表跳过
func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// writeSection 渲染二级标题的条目列表，空列表跳过
func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
