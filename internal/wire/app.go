package wire

import (
	"database/sql"

	"log/slog"

	"github.com/conceptlab/backend/internal/application/devloop"
	"github.com/conceptlab/backend/internal/domain/events"
	"github.com/conceptlab/backend/internal/infrastructure/config"
	applog "github.com/conceptlab/backend/internal/infrastructure/log"
	"github.com/conceptlab/backend/internal/infrastructure/websocket"
	"github.com/conceptlab/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer
	wsHub      *websocket.Hub
	eventBus   events.EventBus
	// broadcaster 持有事件订阅，把进度事件转发到 WebSocket
	broadcaster *devloop.ProgressBroadcaster
	db          *sql.DB
	logger      *slog.Logger

	// 配置热更新
	configWatcher *config.Watcher
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	eventBus events.EventBus,
	broadcaster *devloop.ProgressBroadcaster,
	db *sql.DB,
) *App {
	logger := applog.NewModuleLogger("app", "main")

	// 初始化配置监听器
	configWatcher, err := config.NewWatcher()
	if err != nil {
		logger.Error("Failed to create config watcher", "error", err)
		configWatcher = nil
	}

	// 配置文件热更新目前只调整日志级别；
	// 端口、引擎地址等在启动时拷贝进各组件，需要重启才能生效
	if configWatcher != nil {
		configWatcher.OnReload(func(next *config.Config) {
			if next.Log.Level == "" {
				return
			}
			applog.SetLevel(next.Log.Level)
			logger.Info("Log level updated from config", "level", next.Log.Level)
		})
	}

	return &App{
		HTTPServer:    httpServer,
		MCPServer:     mcpServer,
		wsHub:         wsHub,
		eventBus:      eventBus,
		broadcaster:   broadcaster,
		db:            db,
		logger:        logger,
		configWatcher: configWatcher,
	}
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting conceptlab backend application")

	// 启动 WebSocket Hub
	a.wsHub.Start()

	// 启动配置监听器
	if a.configWatcher != nil {
		if err := a.configWatcher.Start(); err != nil {
			a.logger.Error("Failed to start config watcher", "error", err)
		}
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			a.logger.Error("Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	a.logger.Info("conceptlab backend application started successfully")

	// MCP 服务器通过 HTTP Handler 提供服务，不需要单独启动
	// 已在 HTTP 服务器中注册 /mcp/sse 端点

	return nil
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping conceptlab backend application")

	// 停止配置监听器
	if a.configWatcher != nil {
		a.configWatcher.Stop()
		a.logger.Info("Config watcher stopped")
	}

	// 关闭事件总线
	if a.eventBus != nil {
		a.eventBus.Close()
		a.logger.Info("Event bus closed")
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
		return err
	}

	// 关闭数据库连接
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database connection",
				"error", err,
			)
			return err
		}
	}

	a.logger.Info("conceptlab backend application stopped successfully")

	return nil
}
