package http

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"github.com/conceptlab/backend/internal/infrastructure/config"
	"github.com/conceptlab/backend/internal/infrastructure/log"
	"github.com/conceptlab/backend/internal/interfaces/http/handler"
	"github.com/conceptlab/backend/internal/interfaces/http/middleware"
	"github.com/conceptlab/backend/internal/interfaces/mcp"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/conceptlab/backend/docs" // Swagger docs
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	serverCfg *config.ServerConfig,
	conceptHandler *handler.ConceptHandler,
	sessionHandler *handler.SessionHandler,
	devloopHandler *handler.DevLoopHandler,
	analysisHandler *handler.AnalysisHandler,
	deliverableHandler *handler.DeliverableHandler,
	exportHandler *handler.ExportHandler,
	wsHandler *handler.WebSocketHandler,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	router := gin.Default()
	router.Use(middleware.EnsureUTF8Body())

	logger := log.NewModuleLogger("http", "server")

	// 注册路由
	api := router.Group("/api/v1")
	{
		// 概念相关路由
		api.GET("/concepts", conceptHandler.List)
		api.POST("/concepts", conceptHandler.Create)
		api.GET("/concepts/:id", conceptHandler.Get)
		api.PATCH("/concepts/:id", conceptHandler.Update)
		api.DELETE("/concepts/:id", conceptHandler.Delete)
		api.POST("/concepts/:id/advance", conceptHandler.AdvanceStage)

		// 会话相关路由
		api.GET("/concepts/:id/sessions", sessionHandler.ListByConcept)
		api.GET("/sessions/:sessionId", sessionHandler.Get)
		api.DELETE("/sessions/:sessionId", sessionHandler.Delete)
		api.POST("/sessions/import", exportHandler.ImportSessions)

		// 开发循环相关路由
		api.POST("/concepts/:id/devloop/start", devloopHandler.Start)
		api.POST("/concepts/:id/devloop/stop", devloopHandler.Stop)
		api.GET("/concepts/:id/devloop/status", devloopHandler.Status)

		// 分析任务相关路由
		api.POST("/concepts/:id/analysis", analysisHandler.Start)
		api.GET("/concepts/:id/analysis", analysisHandler.ListByConcept)
		api.GET("/analysis/:jobId", analysisHandler.Get)

		// 可交付文档相关路由
		api.GET("/concepts/:id/deliverable", deliverableHandler.Compile)
		api.GET("/concepts/:id/deliverable/gaps", deliverableHandler.Gaps)
		api.POST("/concepts/:id/deliverable/enhance", deliverableHandler.Enhance)
		api.GET("/concepts/:id/questions", deliverableHandler.Questions)
		api.POST("/concepts/:id/questions/answer", deliverableHandler.AnswerQuestion)
		api.DELETE("/concepts/:id/questions/answers", deliverableHandler.ResetAnswers)
		api.GET("/concepts/:id/export", exportHandler.Export)
	}

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus 指标
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// WebSocket 进度推送
	router.GET("/ws/concepts/:id", wsHandler.Subscribe)

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpPort: serverCfg.HTTPPort,
		logger:   logger,
	}
}

// Start 启动服务器
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:    s.httpPort,
		Handler: s.router,
	}

	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	return s.server.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
