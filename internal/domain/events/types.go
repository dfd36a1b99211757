// Package events 定义领域事件类型和接口
// 用于系统内部的事件驱动通信
package events

import "time"

// EventType 事件类型标识
type EventType string

// 开发循环相关事件类型
const (
	// SessionIterationCompleted 开发会话完成一轮迭代
	SessionIterationCompleted EventType = "session.iteration.completed"
	// SessionStopped 开发会话被停止
	SessionStopped EventType = "session.stopped"
)

// 分析任务相关事件类型
const (
	// AnalysisJobUpdated 分析任务状态更新
	AnalysisJobUpdated EventType = "analysis.job.updated"
	// AnalysisJobFinished 分析任务进入终止状态
	AnalysisJobFinished EventType = "analysis.job.finished"
)

// Event 领域事件接口
// 所有事件类型都必须实现此接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Timestamp 返回事件发生时间
	Timestamp() time.Time
}
