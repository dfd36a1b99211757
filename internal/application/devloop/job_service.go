package devloop

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/conceptlab/backend/internal/domain/analysis"
	"github.com/conceptlab/backend/internal/domain/concept"
	infraanalysis "github.com/conceptlab/backend/internal/infrastructure/analysis"
	"github.com/conceptlab/backend/internal/infrastructure/log"
)

// analysisStages 四阶段分析的固定阶段顺序
var analysisStages = []string{
	string(concept.StageEvaluate),
	string(concept.StageAnalyze),
	string(concept.StageRefine),
	string(concept.StageReiterate),
}

// JobService 分析任务服务
// 一次任务按固定顺序跑完四个阶段，进度按阶段数推进
type JobService struct {
	engine      infraanalysis.EngineClient
	conceptRepo concept.Repository
	jobRepo     analysis.Repository
	poller      *JobPoller
	logger      *slog.Logger
}

// NewJobService 创建分析任务服务
func NewJobService(
	engine infraanalysis.EngineClient,
	conceptRepo concept.Repository,
	jobRepo analysis.Repository,
	poller *JobPoller,
) *JobService {
	return &JobService{
		engine:      engine,
		conceptRepo: conceptRepo,
		jobRepo:     jobRepo,
		poller:      poller,
		logger:      log.NewModuleLogger("devloop", "job_service"),
	}
}

// StartJob 为概念启动一次四阶段分析任务
func (s *JobService) StartJob(ctx context.Context, conceptID string) (*analysis.Job, error) {
	cpt, err := s.conceptRepo.FindByID(conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept: %w", err)
	}
	if cpt == nil {
		return nil, fmt.Errorf("concept not found: %s", conceptID)
	}

	now := time.Now()
	job := &analysis.Job{
		ID:        uuid.New().String(),
		ConceptID: conceptID,
		Status:    analysis.JobPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobRepo.Save(job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	s.logger.Info("Analysis job created", "jobID", job.ID, "conceptID", conceptID)

	go s.runJob(job.ID, conceptID)
	s.poller.Watch(job.ID, conceptID)

	return job, nil
}

// GetJob 查询任务状态
func (s *JobService) GetJob(jobID string) (*analysis.Job, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return job, nil
}

// ListJobs 查询概念下的所有任务
func (s *JobService) ListJobs(conceptID string) ([]*analysis.Job, error) {
	jobs, err := s.jobRepo.FindByConceptID(conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// runJob 在后台执行四阶段分析
func (s *JobService) runJob(jobID, conceptID string) {
	ctx := context.Background()

	start, err := s.engine.StartSession(ctx, conceptID)
	if err != nil {
		s.failJob(jobID, fmt.Sprintf("failed to start engine session: %v", err))
		return
	}
	sessionID := start.SessionID

	for i, stage := range analysisStages {
		s.updateJob(jobID, func(job *analysis.Job) {
			job.Status = analysis.JobRunning
			job.Stage = stage
			job.Progress = i * 100 / len(analysisStages)
		})

		result, err := s.engine.Iterate(ctx, conceptID, sessionID)
		if err != nil {
			s.failJob(jobID, fmt.Sprintf("stage %s failed: %v", stage, err))
			return
		}

		s.updateJob(jobID, func(job *analysis.Job) {
			job.Progress = (i + 1) * 100 / len(analysisStages)
			if result.Scores != nil {
				job.Scores = result.Scores
			}
		})
	}

	s.updateJob(jobID, func(job *analysis.Job) {
		job.Status = analysis.JobCompleted
		job.Progress = 100
	})
	s.logger.Info("Analysis job completed", "jobID", jobID, "conceptID", conceptID)
}

// updateJob 读取-修改-保存任务记录
func (s *JobService) updateJob(jobID string, mutate func(*analysis.Job)) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil || job == nil {
		s.logger.Error("Failed to load job for update", "jobID", jobID, "error", err)
		return
	}
	mutate(job)
	job.UpdatedAt = time.Now()
	if err := s.jobRepo.Save(job); err != nil {
		s.logger.Error("Failed to persist job update", "jobID", jobID, "error", err)
	}
}

// failJob 把任务标记为失败
func (s *JobService) failJob(jobID, reason string) {
	s.updateJob(jobID, func(job *analysis.Job) {
		job.Status = analysis.JobFailed
		job.Error = reason
	})
	s.logger.Error("Analysis job failed", "jobID", jobID, "reason", reason)
}
