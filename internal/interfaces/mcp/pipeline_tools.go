package mcp

import (
	"context"

	"github.com/conceptlab/backend/internal/domain/deliverable"
	"github.com/conceptlab/backend/internal/infrastructure/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DaemonStatusInput 守护进程状态工具输入（空输入）
type DaemonStatusInput struct{}

// DaemonStatusOutput 守护进程状态工具输出
type DaemonStatusOutput struct {
	Status  string `json:"status" jsonschema:"运行状态"`
	Version string `json:"version" jsonschema:"版本号"`
	DataDir string `json:"data_dir" jsonschema:"数据目录"`
}

// getDaemonStatusTool 获取守护进程状态工具
func getDaemonStatusTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input DaemonStatusInput,
) (*mcp.CallToolResult, DaemonStatusOutput, error) {
	output := DaemonStatusOutput{
		Status:  "running",
		Version: "v0.1.0",
		DataDir: config.GetDataDir(),
	}
	return nil, output, nil
}

// ListConceptsInput 概念列表工具输入（空输入）
type ListConceptsInput struct{}

// ConceptSummary 概念摘要
type ConceptSummary struct {
	ID           string `json:"id" jsonschema:"概念ID"`
	Name         string `json:"name" jsonschema:"名称"`
	Status       string `json:"status" jsonschema:"状态"`
	CurrentStage string `json:"current_stage" jsonschema:"当前分析阶段"`
}

// ListConceptsOutput 概念列表工具输出
type ListConceptsOutput struct {
	Concepts []ConceptSummary `json:"concepts" jsonschema:"概念列表"`
	Total    int              `json:"total" jsonschema:"总数"`
}

// listConceptsTool 列出所有概念工具
func (s *MCPServer) listConceptsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListConceptsInput,
) (*mcp.CallToolResult, ListConceptsOutput, error) {
	concepts, err := s.conceptService.List()
	if err != nil {
		return nil, ListConceptsOutput{}, err
	}

	summaries := make([]ConceptSummary, 0, len(concepts))
	for _, cpt := range concepts {
		summaries = append(summaries, ConceptSummary{
			ID:           cpt.ID,
			Name:         cpt.Name,
			Status:       string(cpt.Status),
			CurrentStage: string(cpt.CurrentStage),
		})
	}

	return nil, ListConceptsOutput{Concepts: summaries, Total: len(summaries)}, nil
}

// ConceptIDInput 以概念 ID 为唯一参数的工具输入
type ConceptIDInput struct {
	ConceptID string `json:"concept_id" jsonschema:"概念ID"`
}

// CompileDeliverableOutput 编译工具输出
type CompileDeliverableOutput struct {
	Deliverable *deliverable.CompiledDeliverable `json:"deliverable" jsonschema:"编译后的可交付文档"`
}

// compileDeliverableTool 编译可交付文档工具
func (s *MCPServer) compileDeliverableTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ConceptIDInput,
) (*mcp.CallToolResult, CompileDeliverableOutput, error) {
	compiled, err := s.deliverableService.Compile(input.ConceptID)
	if err != nil {
		return nil, CompileDeliverableOutput{}, err
	}
	return nil, CompileDeliverableOutput{Deliverable: compiled}, nil
}

// GapAnalysisOutput 缺口分析工具输出
type GapAnalysisOutput struct {
	Result *deliverable.GapAnalysisResult `json:"result" jsonschema:"缺口分析结果"`
}

// getGapAnalysisTool 缺口分析工具
func (s *MCPServer) getGapAnalysisTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ConceptIDInput,
) (*mcp.CallToolResult, GapAnalysisOutput, error) {
	result, err := s.deliverableService.AnalyzeGaps(input.ConceptID)
	if err != nil {
		return nil, GapAnalysisOutput{}, err
	}
	return nil, GapAnalysisOutput{Result: result}, nil
}

// SmartQuestionsOutput 智能问题工具输出
type SmartQuestionsOutput struct {
	Plan *deliverable.QuestionPlan `json:"plan" jsonschema:"问题优先级计划"`
}

// getSmartQuestionsTool 智能问题工具
func (s *MCPServer) getSmartQuestionsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ConceptIDInput,
) (*mcp.CallToolResult, SmartQuestionsOutput, error) {
	plan, err := s.deliverableService.Questions(input.ConceptID)
	if err != nil {
		return nil, SmartQuestionsOutput{}, err
	}
	return nil, SmartQuestionsOutput{Plan: plan}, nil
}
