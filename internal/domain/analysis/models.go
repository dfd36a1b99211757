package analysis

import (
	"time"

	"github.com/conceptlab/backend/internal/domain/session"
)

// JobStatus 分析任务状态
type JobStatus string

const (
	// JobPending 等待执行
	JobPending JobStatus = "pending"
	// JobRunning 执行中
	JobRunning JobStatus = "running"
	// JobCompleted 执行完成
	JobCompleted JobStatus = "completed"
	// JobFailed 执行失败
	JobFailed JobStatus = "failed"
)

// Job 一次四阶段分析任务
// 客户端按固定间隔轮询，直到进入终止状态
type Job struct {
	ID        string
	ConceptID string
	Status    JobStatus
	Stage     string
	Progress  int // 0-100
	Scores    *session.Scores
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal 任务是否已结束
func (j *Job) IsTerminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// Repository 分析任务仓储接口
type Repository interface {
	// Save 保存任务（创建或更新）
	Save(job *Job) error

	// FindByID 根据 ID 查找任务
	FindByID(id string) (*Job, error)

	// FindByConceptID 查找概念下的任务，按创建时间倒序
	FindByConceptID(conceptID string) ([]*Job, error)
}
