package devloop

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/domain/events"
	"github.com/conceptlab/backend/internal/domain/session"
	infraanalysis "github.com/conceptlab/backend/internal/infrastructure/analysis"
	"github.com/conceptlab/backend/internal/infrastructure/config"
	"github.com/conceptlab/backend/internal/infrastructure/eventbus"
	"github.com/conceptlab/backend/internal/infrastructure/metrics"
	"github.com/conceptlab/backend/internal/infrastructure/websocket"
)

// stubEngine 可编程的引擎桩
type stubEngine struct {
	mu       sync.Mutex
	startErr error
	iterErr  error
	iterates int
}

func (e *stubEngine) StartSession(_ context.Context, _ string) (*infraanalysis.IterationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startErr != nil {
		return nil, e.startErr
	}
	return &infraanalysis.IterationResult{
		SessionID: "engine-session",
		Stage:     "evaluate",
		Iteration: 0,
	}, nil
}

func (e *stubEngine) Iterate(_ context.Context, _, _ string) (*infraanalysis.IterationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.iterErr != nil {
		return nil, e.iterErr
	}
	e.iterates++
	return &infraanalysis.IterationResult{
		Stage:     "analyze",
		Iteration: e.iterates,
		Response:  "iteration response",
		Scores:    &session.Scores{Completeness: 0.5, Clarity: 0.6},
	}, nil
}

var _ infraanalysis.EngineClient = (*stubEngine)(nil)

type memConceptRepo struct {
	mu       sync.Mutex
	concepts map[string]*concept.Concept
}

func newMemConceptRepo() *memConceptRepo {
	return &memConceptRepo{concepts: make(map[string]*concept.Concept)}
}

func (r *memConceptRepo) Save(c *concept.Concept) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.concepts[c.ID] = c
	return nil
}

func (r *memConceptRepo) FindByID(id string) (*concept.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.concepts[id], nil
}

func (r *memConceptRepo) FindAll() ([]*concept.Concept, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*concept.Concept
	for _, c := range r.concepts {
		out = append(out, c)
	}
	return out, nil
}

func (r *memConceptRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.concepts, id)
	return nil
}

// memSessionRepo 保存副本，避免循环 goroutine 与测试断言共享同一指针
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]session.DevelopmentSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]session.DevelopmentSession)}
}

func (r *memSessionRepo) Save(s *session.DevelopmentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memSessionRepo) FindByID(id string) (*session.DevelopmentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := s
	return &copied, nil
}

func (r *memSessionRepo) FindByConceptID(conceptID string) ([]*session.DevelopmentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*session.DevelopmentSession
	for _, s := range r.sessions {
		if s.ConceptID == conceptID {
			copied := s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memSessionRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

type runnerFixture struct {
	runner      *Runner
	engine      *stubEngine
	conceptRepo *memConceptRepo
	sessionRepo *memSessionRepo
	bus         events.EventBus
	hub         *websocket.Hub
}

func newRunnerFixture(t *testing.T, cfg *config.DevLoopConfig) *runnerFixture {
	t.Helper()
	f := &runnerFixture{
		engine:      &stubEngine{},
		conceptRepo: newMemConceptRepo(),
		sessionRepo: newMemSessionRepo(),
		bus:         eventbus.NewEventBus(),
		hub:         websocket.NewHub(),
	}
	f.hub.Start()
	t.Cleanup(func() { f.bus.Close() })

	require.NoError(t, f.conceptRepo.Save(&concept.Concept{ID: "c1", Name: "测试概念"}))
	// 进度推送走事件订阅，与生产装配一致
	NewProgressBroadcaster(f.bus, f.hub)
	f.runner = NewRunner(cfg, f.engine, f.conceptRepo, f.sessionRepo, f.bus)
	return f
}

// waitFor 轮询直到条件成立或超时
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("等待超时: %s", msg)
}

func TestRunner_StartUnknownConcept(t *testing.T) {
	f := newRunnerFixture(t, &config.DevLoopConfig{IterationDelayMS: 5, MaxIterations: 1})

	_, err := f.runner.Start(context.Background(), "missing")
	assert.Error(t, err, "未知概念应返回错误")
	assert.Contains(t, err.Error(), "concept not found")
	assert.False(t, f.runner.IsRunning("missing"))
}

func TestRunner_StartEngineFailure(t *testing.T) {
	f := newRunnerFixture(t, &config.DevLoopConfig{IterationDelayMS: 5, MaxIterations: 1})
	f.engine.startErr = errors.New("engine down")

	_, err := f.runner.Start(context.Background(), "c1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start engine session")
	assert.False(t, f.runner.IsRunning("c1"), "启动失败后不应残留活跃状态")
}

func TestRunner_CompletesAfterMaxIterations(t *testing.T) {
	f := newRunnerFixture(t, &config.DevLoopConfig{IterationDelayMS: 1, MaxIterations: 2})

	sess, err := f.runner.Start(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "engine-session", sess.ID, "应沿用引擎返回的会话 ID")
	assert.Equal(t, session.StatusRunning, sess.Status)
	assert.Equal(t, "evaluate", sess.CurrentStage)

	waitFor(t, func() bool { return !f.runner.IsRunning("c1") }, "循环结束")

	stored, err := f.sessionRepo.FindByID("engine-session")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, session.StatusCompleted, stored.Status)
	assert.Equal(t, 2, stored.Iteration, "两轮迭代后计数应为 2")
	assert.Len(t, stored.Interactions, 3, "初始交互加两轮迭代")
	assert.Equal(t, "analyze", stored.CurrentStage)
	require.NotNil(t, stored.LatestScores)
	assert.InDelta(t, 0.5, stored.LatestScores.Completeness, 1e-9)
}

func TestRunner_DuplicateStartRejected(t *testing.T) {
	f := newRunnerFixture(t, &config.DevLoopConfig{IterationDelayMS: 500, MaxIterations: 100})

	_, err := f.runner.Start(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, f.runner.IsRunning("c1"))

	_, err = f.runner.Start(context.Background(), "c1")
	assert.Error(t, err, "同一概念不允许并发循环")
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, f.runner.Stop("c1"))
	waitFor(t, func() bool { return !f.runner.IsRunning("c1") }, "循环停止")
}

func TestRunner_StopMarksSessionStopped(t *testing.T) {
	f := newRunnerFixture(t, &config.DevLoopConfig{IterationDelayMS: 200, MaxIterations: 100})

	sess, err := f.runner.Start(context.Background(), "c1")
	require.NoError(t, err)

	require.NoError(t, f.runner.Stop("c1"))
	waitFor(t, func() bool { return !f.runner.IsRunning("c1") }, "循环停止")

	stored, err := f.sessionRepo.FindByID(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, session.StatusStopped, stored.Status)

	err = f.runner.Stop("c1")
	assert.Error(t, err, "循环结束后再次停止应报错")
	assert.Contains(t, err.Error(), "no development loop running")
}

func TestRunner_IterationFailureMarksSessionFailed(t *testing.T) {
	f := newRunnerFixture(t, &config.DevLoopConfig{IterationDelayMS: 1, MaxIterations: 10})
	f.engine.iterErr = errors.New("iterate exploded")

	// 失败计数应落在会话当前阶段的标签上
	failuresBefore := testutil.ToFloat64(metrics.DevLoopFailures.WithLabelValues("evaluate"))

	sess, err := f.runner.Start(context.Background(), "c1")
	require.NoError(t, err)

	waitFor(t, func() bool { return !f.runner.IsRunning("c1") }, "循环因失败退出")

	stored, err := f.sessionRepo.FindByID(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, session.StatusFailed, stored.Status)
	assert.Len(t, stored.Interactions, 1, "失败前只有初始交互")

	failuresAfter := testutil.ToFloat64(metrics.DevLoopFailures.WithLabelValues("evaluate"))
	assert.InDelta(t, failuresBefore+1, failuresAfter, 1e-9, "失败计数应带上阶段标签 evaluate")
	assert.InDelta(t, 0,
		testutil.ToFloat64(metrics.DevLoopFailures.WithLabelValues("unknown")), 1e-9,
		"阶段已知时不应回退到 unknown 标签")
}

func TestRunner_PublishesIterationEvents(t *testing.T) {
	f := newRunnerFixture(t, &config.DevLoopConfig{IterationDelayMS: 1, MaxIterations: 2})

	var received atomic.Int32
	f.bus.Subscribe(events.SessionIterationCompleted, events.HandlerFunc(func(events.Event) error {
		received.Add(1)
		return nil
	}))

	_, err := f.runner.Start(context.Background(), "c1")
	require.NoError(t, err)
	waitFor(t, func() bool { return !f.runner.IsRunning("c1") }, "循环结束")

	// 两轮迭代事件加一条完成事件
	waitFor(t, func() bool { return received.Load() == 3 }, "事件送达")
}

func TestRunner_BroadcastsProgressToSubscribers(t *testing.T) {
	f := newRunnerFixture(t, &config.DevLoopConfig{IterationDelayMS: 1, MaxIterations: 1})

	conn := &websocket.Connection{ConceptID: "c1", Send: make(chan []byte, 16)}
	f.hub.Register(conn)
	// 等注册被 Run 协程处理
	time.Sleep(50 * time.Millisecond)

	_, err := f.runner.Start(context.Background(), "c1")
	require.NoError(t, err)
	waitFor(t, func() bool { return !f.runner.IsRunning("c1") }, "循环结束")

	// 事件分发对每个订阅者异步进行，消息到达顺序不保证
	var messages []ProgressMessage
	for {
		select {
		case raw := <-conn.Send:
			var msg ProgressMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			messages = append(messages, msg)
			continue
		case <-time.After(200 * time.Millisecond):
		}
		break
	}

	require.NotEmpty(t, messages, "订阅者应收到进度推送")
	var sawProgress, sawCompleted bool
	for _, msg := range messages {
		assert.Equal(t, "engine-session", msg.SessionID)
		if msg.Type == "devloop.progress" {
			sawProgress = true
		}
		if msg.Status == session.StatusCompleted {
			sawCompleted = true
		}
	}
	assert.True(t, sawProgress, "应收到进度类型的推送")
	assert.True(t, sawCompleted, "应收到携带终止状态的推送")
}

func TestRunner_StoppedBroadcastUsesStoppedType(t *testing.T) {
	f := newRunnerFixture(t, &config.DevLoopConfig{IterationDelayMS: 200, MaxIterations: 100})

	conn := &websocket.Connection{ConceptID: "c1", Send: make(chan []byte, 16)}
	f.hub.Register(conn)
	time.Sleep(50 * time.Millisecond)

	_, err := f.runner.Start(context.Background(), "c1")
	require.NoError(t, err)
	require.NoError(t, f.runner.Stop("c1"))
	waitFor(t, func() bool { return !f.runner.IsRunning("c1") }, "循环停止")

	// 停止前可能已有迭代推送，读到停止消息为止
	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-conn.Send:
			var msg ProgressMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			if msg.Type != "devloop.stopped" {
				continue
			}
			assert.Equal(t, session.StatusStopped, msg.Status)
			return
		case <-deadline:
			t.Fatal("未收到停止推送")
		}
	}
}
