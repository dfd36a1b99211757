package devloop

import (
	"log/slog"

	"github.com/conceptlab/backend/internal/domain/events"
	"github.com/conceptlab/backend/internal/infrastructure/log"
	"github.com/conceptlab/backend/internal/infrastructure/websocket"
)

// ProgressBroadcaster 进度事件转发器
// 订阅开发循环和分析任务事件，转换为 WebSocket 消息
// 推送给对应概念的订阅者；事件发布方不感知 WebSocket 层
type ProgressBroadcaster struct {
	hub    *websocket.Hub
	logger *slog.Logger
}

// NewProgressBroadcaster 创建进度转发器并注册事件订阅
func NewProgressBroadcaster(eventBus events.EventBus, hub *websocket.Hub) *ProgressBroadcaster {
	b := &ProgressBroadcaster{
		hub:    hub,
		logger: log.NewModuleLogger("devloop", "broadcaster"),
	}

	eventBus.Subscribe(events.SessionIterationCompleted, events.HandlerFunc(b.handleSessionEvent))
	eventBus.Subscribe(events.SessionStopped, events.HandlerFunc(b.handleSessionEvent))
	eventBus.Subscribe(events.AnalysisJobUpdated, events.HandlerFunc(b.handleJobEvent))
	eventBus.Subscribe(events.AnalysisJobFinished, events.HandlerFunc(b.handleJobEvent))

	return b
}

// handleSessionEvent 转发开发循环进度
func (b *ProgressBroadcaster) handleSessionEvent(event events.Event) error {
	e, ok := event.(*events.SessionIterationEvent)
	if !ok {
		return nil
	}

	msgType := "devloop.progress"
	if e.EventType == events.SessionStopped {
		msgType = "devloop.stopped"
	}

	if err := b.hub.BroadcastToConcept(e.ConceptID, &ProgressMessage{
		Type:      msgType,
		SessionID: e.SessionID,
		Stage:     e.Stage,
		Iteration: e.Iteration,
		Status:    e.Status,
		Scores:    e.Scores,
	}); err != nil {
		b.logger.Warn("Failed to broadcast progress", "conceptID", e.ConceptID, "error", err)
		return err
	}
	return nil
}

// handleJobEvent 转发分析任务进度
func (b *ProgressBroadcaster) handleJobEvent(event events.Event) error {
	e, ok := event.(*events.AnalysisJobEvent)
	if !ok {
		return nil
	}

	msgType := "analysis.progress"
	if e.EventType == events.AnalysisJobFinished {
		msgType = "analysis.finished"
	}

	if err := b.hub.BroadcastToConcept(e.ConceptID, &JobProgressMessage{
		Type:     msgType,
		JobID:    e.JobID,
		Status:   e.Status,
		Stage:    e.Stage,
		Progress: e.Progress,
		Error:    e.Error,
	}); err != nil {
		b.logger.Warn("Failed to broadcast job progress", "jobID", e.JobID, "error", err)
		return err
	}
	return nil
}
