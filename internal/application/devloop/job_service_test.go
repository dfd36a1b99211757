package devloop

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conceptlab/backend/internal/domain/analysis"
	"github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/infrastructure/config"
	"github.com/conceptlab/backend/internal/infrastructure/eventbus"
	"github.com/conceptlab/backend/internal/infrastructure/websocket"
)

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]analysis.Job
	// 记录插入顺序，FindByConceptID 按创建时间倒序返回
	order []string
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]analysis.Job)}
}

func (r *memJobRepo) Save(job *analysis.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; !exists {
		r.order = append(r.order, job.ID)
	}
	r.jobs[job.ID] = *job
	return nil
}

func (r *memJobRepo) FindByID(id string) (*analysis.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := job
	return &copied, nil
}

func (r *memJobRepo) FindByConceptID(conceptID string) ([]*analysis.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*analysis.Job
	for i := len(r.order) - 1; i >= 0; i-- {
		job, ok := r.jobs[r.order[i]]
		if ok && job.ConceptID == conceptID {
			copied := job
			out = append(out, &copied)
		}
	}
	return out, nil
}

var _ analysis.Repository = (*memJobRepo)(nil)

type jobFixture struct {
	service     *JobService
	poller      *JobPoller
	engine      *stubEngine
	conceptRepo *memConceptRepo
	jobRepo     *memJobRepo
	hub         *websocket.Hub
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	f := &jobFixture{
		engine:      &stubEngine{},
		conceptRepo: newMemConceptRepo(),
		jobRepo:     newMemJobRepo(),
		hub:         websocket.NewHub(),
	}
	f.hub.Start()
	bus := eventbus.NewEventBus()
	t.Cleanup(bus.Close)

	NewProgressBroadcaster(bus, f.hub)
	cfg := &config.DevLoopConfig{PollIntervalMS: 10}
	f.poller = NewJobPoller(cfg, f.jobRepo, bus)
	f.service = NewJobService(f.engine, f.conceptRepo, f.jobRepo, f.poller)

	require.NoError(t, f.conceptRepo.Save(&concept.Concept{ID: "c1", Name: "测试概念"}))
	return f
}

func TestJobService_StartUnknownConcept(t *testing.T) {
	f := newJobFixture(t)

	_, err := f.service.StartJob(context.Background(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "concept not found")
}

func TestJobService_RunsFourStages(t *testing.T) {
	f := newJobFixture(t)

	job, err := f.service.StartJob(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, analysis.JobPending, job.Status)
	assert.Equal(t, 0, job.Progress)

	waitFor(t, func() bool {
		stored, _ := f.jobRepo.FindByID(job.ID)
		return stored != nil && stored.IsTerminal()
	}, "任务结束")

	stored, err := f.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, analysis.JobCompleted, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	assert.Equal(t, string(concept.StageReiterate), stored.Stage, "最后执行的阶段应被记录")
	require.NotNil(t, stored.Scores, "完成的任务应携带最新评分")
	assert.InDelta(t, 0.5, stored.Scores.Completeness, 1e-9)
}

func TestJobService_StageFailureMarksJobFailed(t *testing.T) {
	f := newJobFixture(t)
	f.engine.iterErr = errors.New("engine rejected request")

	job, err := f.service.StartJob(context.Background(), "c1")
	require.NoError(t, err)

	waitFor(t, func() bool {
		stored, _ := f.jobRepo.FindByID(job.ID)
		return stored != nil && stored.IsTerminal()
	}, "任务失败")

	stored, err := f.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, analysis.JobFailed, stored.Status)
	assert.Contains(t, stored.Error, "stage evaluate failed")
}

func TestJobService_GetJob(t *testing.T) {
	f := newJobFixture(t)

	_, err := f.service.GetJob("missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")

	job, err := f.service.StartJob(context.Background(), "c1")
	require.NoError(t, err)

	got, err := f.service.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "c1", got.ConceptID)
}

func TestJobService_ListJobs(t *testing.T) {
	f := newJobFixture(t)
	require.NoError(t, f.conceptRepo.Save(&concept.Concept{ID: "c2", Name: "另一个概念"}))

	first, err := f.service.StartJob(context.Background(), "c1")
	require.NoError(t, err)
	second, err := f.service.StartJob(context.Background(), "c1")
	require.NoError(t, err)
	_, err = f.service.StartJob(context.Background(), "c2")
	require.NoError(t, err)

	jobs, err := f.service.ListJobs("c1")
	require.NoError(t, err)
	require.Len(t, jobs, 2, "只返回指定概念的任务")
	assert.Equal(t, second.ID, jobs[0].ID, "最新任务排在最前")
	assert.Equal(t, first.ID, jobs[1].ID)
}

func TestJobPoller_BroadcastsProgressUntilTerminal(t *testing.T) {
	f := newJobFixture(t)

	// 直接写入任务记录，由测试手动推进状态
	now := time.Now()
	job := &analysis.Job{
		ID:        "job-1",
		ConceptID: "c1",
		Status:    analysis.JobRunning,
		Stage:     "evaluate",
		Progress:  25,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.jobRepo.Save(job))

	conn := &websocket.Connection{ConceptID: "c1", Send: make(chan []byte, 16)}
	f.hub.Register(conn)
	time.Sleep(50 * time.Millisecond)

	f.poller.Watch(job.ID, "c1")

	readMessage := func() JobProgressMessage {
		t.Helper()
		select {
		case raw := <-conn.Send:
			var msg JobProgressMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			return msg
		case <-time.After(2 * time.Second):
			t.Fatal("未收到任务进度推送")
			return JobProgressMessage{}
		}
	}

	msg := readMessage()
	assert.Equal(t, "analysis.progress", msg.Type)
	assert.Equal(t, "job-1", msg.JobID)
	assert.Equal(t, 25, msg.Progress)

	job.Status = analysis.JobCompleted
	job.Progress = 100
	require.NoError(t, f.jobRepo.Save(job))

	msg = readMessage()
	assert.Equal(t, "analysis.finished", msg.Type)
	assert.Equal(t, string(analysis.JobCompleted), msg.Status)
	assert.Equal(t, 100, msg.Progress)
}
