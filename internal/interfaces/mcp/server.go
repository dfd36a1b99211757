// Package mcp 通过 MCP 协议暴露可交付文档管线能力
package mcp

import (
	"net/http"

	appconcept "github.com/conceptlab/backend/internal/application/concept"
	appdeliverable "github.com/conceptlab/backend/internal/application/deliverable"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer MCP 服务器
type MCPServer struct {
	server             *mcp.Server
	handler            http.Handler
	conceptService     *appconcept.Service
	deliverableService *appdeliverable.Service
}

// NewServer 创建 MCP 服务器
func NewServer(
	conceptService *appconcept.Service,
	deliverableService *appdeliverable.Service,
) *MCPServer {
	// 创建 MCP 服务器实例
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "conceptlab-daemon",
			Version: "0.1.0",
		},
		nil, // 使用默认能力
	)

	mcpServer := &MCPServer{
		server:             server,
		conceptService:     conceptService,
		deliverableService: deliverableService,
	}

	// 注册工具：get_daemon_status
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_daemon_status",
		Description: "Get the status information of the conceptlab daemon, including running status, version number, and data directory. No parameters required.",
	}, getDaemonStatusTool)

	// 注册工具：list_concepts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_concepts",
		Description: "List all concepts tracked by the dashboard with their analysis stage and status. No parameters required. Returns: array of concepts with id, name, status, and current stage.",
	}, mcpServer.listConceptsTool)

	// 注册工具：compile_deliverable
	mcp.AddTool(server, &mcp.Tool{
		Name:        "compile_deliverable",
		Description: "Compile the structured deliverable document for a concept from its development session data. Parameters: concept_id (string, required). Returns: project overview, market analysis, technical specification, implementation plan, validation results, next steps, and quality metrics.",
	}, mcpServer.compileDeliverableTool)

	// 注册工具：get_gap_analysis
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_gap_analysis",
		Description: "Analyze the compiled deliverable of a concept for missing components, weak sections, and recommended actions. Parameters: concept_id (string, required). Returns: missing components, weak sections, enhancement prompts, quality analysis with per-dimension scores, and recommended actions.",
	}, mcpServer.getGapAnalysisTool)

	// 注册工具：get_smart_questions
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_smart_questions",
		Description: "Generate prioritized clarification questions for a concept based on its deliverable gaps. Already-answered questions are filtered out. Parameters: concept_id (string, required). Returns: prioritized questions, next best question, completion strategy, and estimated time to complete in minutes.",
	}, mcpServer.getSmartQuestionsTool)

	// 创建 SSE Handler
	handler := mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			// 每个请求返回同一个服务器实例
			return server
		},
		nil, // SSEOptions，使用默认值
	)

	mcpServer.handler = handler
	return mcpServer
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}
