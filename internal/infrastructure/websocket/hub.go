// Package websocket 实现按概念分组的进度推送
package websocket

import (
	"encoding/json"
	"sync"
)

// Hub WebSocket 连接管理中心
type Hub struct {
	// 按概念 ID 分组的连接
	concepts map[string]map[*Connection]bool
	// 注册连接
	register chan *Connection
	// 注销连接
	unregister chan *Connection
	// 广播消息
	broadcast chan *Message
	mu        sync.RWMutex
}

// Connection WebSocket 连接
type Connection struct {
	ConceptID string
	Send      chan []byte
}

// Message 消息
type Message struct {
	ConceptID string
	Data      []byte
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		concepts:   make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message),
	}
}

// Run 运行 Hub（需要在 goroutine 中运行）
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.concepts[conn.ConceptID] == nil {
				h.concepts[conn.ConceptID] = make(map[*Connection]bool)
			}
			h.concepts[conn.ConceptID][conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if group, ok := h.concepts[conn.ConceptID]; ok {
				if _, ok := group[conn]; ok {
					delete(group, conn)
					close(conn.Send)
					if len(group) == 0 {
						delete(h.concepts, conn.ConceptID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			if group, ok := h.concepts[msg.ConceptID]; ok {
				for conn := range group {
					select {
					case conn.Send <- msg.Data:
					default:
						close(conn.Send)
						delete(group, conn)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Start 启动 Hub（启动后台 goroutine）
func (h *Hub) Start() {
	go h.Run()
}

// Register 注册连接
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister 注销连接
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToConcept 向指定概念的订阅者广播消息
func (h *Hub) BroadcastToConcept(conceptID string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	h.broadcast <- &Message{
		ConceptID: conceptID,
		Data:      jsonData,
	}
	return nil
}
