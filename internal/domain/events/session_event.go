package events

import (
	"time"

	"github.com/conceptlab/backend/internal/domain/session"
)

// SessionIterationEvent 开发会话迭代事件
// 开发循环每完成一轮迭代（或被停止）时触发，用于向前端推送进度
type SessionIterationEvent struct {
	// EventType 事件类型（completed/stopped）
	EventType EventType
	// ConceptID 概念 ID
	ConceptID string
	// SessionID 会话 ID
	SessionID string
	// Stage 当前阶段
	Stage string
	// Iteration 迭代序号
	Iteration int
	// Status 会话状态
	Status session.Status
	// Scores 本轮评分（可选）
	Scores *session.Scores
	// EventTime 事件发生时间
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *SessionIterationEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *SessionIterationEvent) Timestamp() time.Time {
	return e.EventTime
}

// AnalysisJobEvent 分析任务事件
type AnalysisJobEvent struct {
	// EventType 事件类型（updated/finished）
	EventType EventType
	// ConceptID 概念 ID
	ConceptID string
	// JobID 任务 ID
	JobID string
	// Status 任务状态
	Status string
	// Stage 当前阶段
	Stage string
	// Progress 进度 0-100
	Progress int
	// Error 失败原因（仅失败时非空）
	Error string
	// EventTime 事件发生时间
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *AnalysisJobEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *AnalysisJobEvent) Timestamp() time.Time {
	return e.EventTime
}
