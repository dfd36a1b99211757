package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"

	infraws "github.com/conceptlab/backend/internal/infrastructure/websocket"
	"github.com/conceptlab/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler 进度推送 WebSocket 处理器
type WebSocketHandler struct {
	hub      *infraws.Hub
	upgrader gorillaws.Upgrader
}

// NewWebSocketHandler 创建 WebSocket 处理器
func NewWebSocketHandler(hub *infraws.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 本机服务，允许所有来源
			},
		},
	}
}

// Subscribe 订阅概念的进度推送
// @Summary 订阅概念的开发循环与分析进度
// @Tags WebSocket
// @Param id path string true "概念ID"
// @Router /ws/concepts/{id} [get]
func (h *WebSocketHandler) Subscribe(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时 gorilla 已写入响应
		return
	}

	wsConn := &infraws.Connection{
		ConceptID: conceptID,
		Send:      make(chan []byte, 256),
	}
	h.hub.Register(wsConn)

	// 写泵：Hub 广播的消息逐条写出
	go func() {
		for data := range wsConn.Send {
			if err := conn.WriteMessage(gorillaws.TextMessage, data); err != nil {
				break
			}
		}
		_ = conn.Close()
	}()

	// 读泵：只用于感知连接关闭
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.hub.Unregister(wsConn)
				return
			}
		}
	}()
}
