// Package devloop 实现 AI 开发循环的编排
package devloop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/domain/events"
	"github.com/conceptlab/backend/internal/domain/session"
	infraanalysis "github.com/conceptlab/backend/internal/infrastructure/analysis"
	"github.com/conceptlab/backend/internal/infrastructure/config"
	"github.com/conceptlab/backend/internal/infrastructure/log"
	"github.com/conceptlab/backend/internal/infrastructure/metrics"
)

// ProgressMessage WebSocket 进度推送消息
type ProgressMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Stage     string          `json:"stage"`
	Iteration int             `json:"iteration"`
	Status    session.Status  `json:"status"`
	Scores    *session.Scores `json:"scores,omitempty"`
}

// loopState 单个概念的循环运行状态
type loopState struct {
	sessionID string
	cancel    chan struct{}
	stopOnce  sync.Once
}

// requestStop 触发协作式取消，幂等
func (s *loopState) requestStop() {
	s.stopOnce.Do(func() {
		close(s.cancel)
	})
}

// Runner 开发循环运行器
// 每个概念同一时刻至多一个活跃循环；取消是协作式的，
// 只在迭代边界检查，不会打断进行中的一轮
type Runner struct {
	cfg         *config.DevLoopConfig
	engine      infraanalysis.EngineClient
	conceptRepo concept.Repository
	sessionRepo session.Repository
	eventBus    events.EventBus
	logger      *slog.Logger

	mu     sync.Mutex
	active map[string]*loopState // key: conceptID
}

// NewRunner 创建开发循环运行器
func NewRunner(
	cfg *config.DevLoopConfig,
	engine infraanalysis.EngineClient,
	conceptRepo concept.Repository,
	sessionRepo session.Repository,
	eventBus events.EventBus,
) *Runner {
	return &Runner{
		cfg:         cfg,
		engine:      engine,
		conceptRepo: conceptRepo,
		sessionRepo: sessionRepo,
		eventBus:    eventBus,
		logger:      log.NewModuleLogger("devloop", "runner"),
		active:      make(map[string]*loopState),
	}
}

// Start 为概念启动开发循环
// 概念不存在或循环已在运行时返回错误
func (r *Runner) Start(ctx context.Context, conceptID string) (*session.DevelopmentSession, error) {
	cpt, err := r.conceptRepo.FindByID(conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept: %w", err)
	}
	if cpt == nil {
		return nil, fmt.Errorf("concept not found: %s", conceptID)
	}

	r.mu.Lock()
	if _, running := r.active[conceptID]; running {
		r.mu.Unlock()
		return nil, fmt.Errorf("development loop already running for concept %s", conceptID)
	}
	// 占位，防止并发重复启动
	state := &loopState{cancel: make(chan struct{})}
	r.active[conceptID] = state
	r.mu.Unlock()

	result, err := r.engine.StartSession(ctx, conceptID)
	if err != nil {
		r.removeActive(conceptID)
		return nil, fmt.Errorf("failed to start engine session: %w", err)
	}

	sessionID := result.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	state.sessionID = sessionID

	now := time.Now()
	sess := &session.DevelopmentSession{
		ID:           sessionID,
		ConceptID:    conceptID,
		Status:       session.StatusRunning,
		CurrentStage: result.Stage,
		Iteration:    result.Iteration,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sess.AppendInteraction(r.toInteraction(result))

	if err := r.sessionRepo.Save(sess); err != nil {
		r.removeActive(conceptID)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	metrics.ActiveSessions.Inc()
	r.logger.Info("Development loop started",
		"conceptID", conceptID,
		"sessionID", sessionID,
		"stage", result.Stage,
	)

	go r.runLoop(conceptID, sessionID, state)
	return sess, nil
}

// Stop 请求停止概念的开发循环
// 循环未运行时返回错误；实际停止发生在下一个迭代边界
func (r *Runner) Stop(conceptID string) error {
	r.mu.Lock()
	state, running := r.active[conceptID]
	r.mu.Unlock()

	if !running {
		return fmt.Errorf("no development loop running for concept %s", conceptID)
	}

	state.requestStop()
	r.logger.Info("Development loop stop requested", "conceptID", conceptID)
	return nil
}

// IsRunning 概念是否有活跃循环
func (r *Runner) IsRunning(conceptID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, running := r.active[conceptID]
	return running
}

// runLoop 循环主体，在独立 goroutine 中运行
func (r *Runner) runLoop(conceptID, sessionID string, state *loopState) {
	defer func() {
		r.removeActive(conceptID)
		metrics.ActiveSessions.Dec()
	}()

	delay := time.Duration(r.cfg.IterationDelayMS) * time.Millisecond
	maxIterations := r.cfg.MaxIterations

	for i := 0; maxIterations <= 0 || i < maxIterations; i++ {
		// 迭代之间的固定延迟，同时作为取消检查点
		select {
		case <-state.cancel:
			r.finishSession(conceptID, sessionID, session.StatusStopped, "")
			return
		case <-time.After(delay):
		}

		result, err := r.engine.Iterate(context.Background(), conceptID, sessionID)
		if err != nil {
			r.logger.Error("Iteration failed",
				"conceptID", conceptID,
				"sessionID", sessionID,
				"error", err,
			)
			stage := "unknown"
			if failed, ferr := r.sessionRepo.FindByID(sessionID); ferr == nil && failed != nil && failed.CurrentStage != "" {
				stage = failed.CurrentStage
			}
			metrics.DevLoopFailures.WithLabelValues(stage).Inc()
			r.finishSession(conceptID, sessionID, session.StatusFailed, err.Error())
			return
		}

		sess, err := r.sessionRepo.FindByID(sessionID)
		if err != nil || sess == nil {
			r.logger.Error("Session disappeared during loop", "sessionID", sessionID, "error", err)
			return
		}

		sess.AppendInteraction(r.toInteraction(result))
		if err := r.sessionRepo.Save(sess); err != nil {
			r.logger.Error("Failed to persist iteration", "sessionID", sessionID, "error", err)
		}

		metrics.DevLoopIterations.WithLabelValues(result.Stage).Inc()
		r.publishIteration(events.SessionIterationCompleted, conceptID, sess, result.Scores)
	}

	r.finishSession(conceptID, sessionID, session.StatusCompleted, "")
}

// finishSession 将会话置为终止状态并广播
func (r *Runner) finishSession(conceptID, sessionID string, status session.Status, reason string) {
	sess, err := r.sessionRepo.FindByID(sessionID)
	if err != nil || sess == nil {
		return
	}

	sess.Status = status
	sess.UpdatedAt = time.Now()
	if err := r.sessionRepo.Save(sess); err != nil {
		r.logger.Error("Failed to persist terminal session state", "sessionID", sessionID, "error", err)
	}

	eventType := events.SessionIterationCompleted
	if status == session.StatusStopped {
		eventType = events.SessionStopped
	}
	r.publishIteration(eventType, conceptID, sess, sess.LatestScores)

	r.logger.Info("Development loop finished",
		"conceptID", conceptID,
		"sessionID", sessionID,
		"status", status,
		"iterations", sess.Iteration,
		"reason", reason,
	)
}

// publishIteration 发布迭代进度事件
// WebSocket 推送由订阅该事件的 ProgressBroadcaster 完成
func (r *Runner) publishIteration(eventType events.EventType, conceptID string, sess *session.DevelopmentSession, scores *session.Scores) {
	r.eventBus.Publish(&events.SessionIterationEvent{
		EventType: eventType,
		ConceptID: conceptID,
		SessionID: sess.ID,
		Stage:     sess.CurrentStage,
		Iteration: sess.Iteration,
		Status:    sess.Status,
		Scores:    scores,
		EventTime: time.Now(),
	})
}

// toInteraction 把引擎返回转换为会话交互记录
func (r *Runner) toInteraction(result *infraanalysis.IterationResult) session.Interaction {
	return session.Interaction{
		Stage:     result.Stage,
		Iteration: result.Iteration,
		Response:  result.Response,
		Timestamp: time.Now().UnixMilli(),
		Scores:    result.Scores,
	}
}

// removeActive 移除活跃循环记录
func (r *Runner) removeActive(conceptID string) {
	r.mu.Lock()
	delete(r.active, conceptID)
	r.mu.Unlock()
}
