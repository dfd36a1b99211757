package devloop

import (
	"time"

	"log/slog"

	"github.com/conceptlab/backend/internal/domain/analysis"
	"github.com/conceptlab/backend/internal/domain/events"
	"github.com/conceptlab/backend/internal/infrastructure/config"
	"github.com/conceptlab/backend/internal/infrastructure/log"
)

// JobProgressMessage 分析任务进度推送消息
type JobProgressMessage struct {
	Type     string `json:"type"`
	JobID    string `json:"jobId"`
	Status   string `json:"status"`
	Stage    string `json:"stage,omitempty"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// JobPoller 分析任务轮询器
// 按固定间隔读取任务记录，状态变化时发布任务进度事件，
// 任务进入终止状态后停止
type JobPoller struct {
	cfg      *config.DevLoopConfig
	jobRepo  analysis.Repository
	eventBus events.EventBus
	logger   *slog.Logger
}

// NewJobPoller 创建任务轮询器
func NewJobPoller(
	cfg *config.DevLoopConfig,
	jobRepo analysis.Repository,
	eventBus events.EventBus,
) *JobPoller {
	return &JobPoller{
		cfg:      cfg,
		jobRepo:  jobRepo,
		eventBus: eventBus,
		logger:   log.NewModuleLogger("devloop", "job_poller"),
	}
}

// Watch 在后台轮询任务直到终止状态
func (p *JobPoller) Watch(jobID, conceptID string) {
	go p.poll(jobID, conceptID)
}

// poll 轮询主体
func (p *JobPoller) poll(jobID, conceptID string) {
	interval := time.Duration(p.cfg.PollIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastStatus analysis.JobStatus
	var lastProgress int

	for range ticker.C {
		job, err := p.jobRepo.FindByID(jobID)
		if err != nil || job == nil {
			p.logger.Error("Failed to poll job", "jobID", jobID, "error", err)
			return
		}

		changed := job.Status != lastStatus || job.Progress != lastProgress
		lastStatus = job.Status
		lastProgress = job.Progress

		if changed {
			p.notify(job, conceptID)
		}

		if job.IsTerminal() {
			p.logger.Info("Job reached terminal state",
				"jobID", jobID,
				"status", job.Status,
			)
			return
		}
	}
}

// notify 发布任务进度事件
// WebSocket 推送由订阅该事件的 ProgressBroadcaster 完成
func (p *JobPoller) notify(job *analysis.Job, conceptID string) {
	eventType := events.AnalysisJobUpdated
	if job.IsTerminal() {
		eventType = events.AnalysisJobFinished
	}

	p.eventBus.Publish(&events.AnalysisJobEvent{
		EventType: eventType,
		ConceptID: conceptID,
		JobID:     job.ID,
		Status:    string(job.Status),
		Stage:     job.Stage,
		Progress:  job.Progress,
		Error:     job.Error,
		EventTime: time.Now(),
	})
}
