package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/conceptlab/backend/internal/domain/analysis"
	"github.com/conceptlab/backend/internal/domain/session"
	"github.com/google/uuid"
)

// jobRepository 分析任务 SQLite 仓储实现
type jobRepository struct {
	db *sql.DB
}

// NewJobRepository 创建分析任务仓储实例
func NewJobRepository(db *sql.DB) analysis.Repository {
	if err := initJobTable(db); err != nil {
		fmt.Printf("failed to init analysis_jobs table: %v\n", err)
	}
	return &jobRepository{db: db}
}

// initJobTable 初始化分析任务表
func initJobTable(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS analysis_jobs (
		id TEXT PRIMARY KEY,
		concept_id TEXT NOT NULL,
		status TEXT NOT NULL,
		stage TEXT,
		progress INTEGER NOT NULL DEFAULT 0,
		scores TEXT,
		error TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create analysis_jobs table: %w", err)
	}

	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_analysis_jobs_concept ON analysis_jobs(concept_id);
	CREATE INDEX IF NOT EXISTS idx_analysis_jobs_status ON analysis_jobs(status);
	`

	if _, err := db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create analysis_jobs indexes: %w", err)
	}

	return nil
}

// Save 保存分析任务
func (r *jobRepository) Save(job *analysis.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	var scores []byte
	if job.Scores != nil {
		b, err := json.Marshal(job.Scores)
		if err != nil {
			return fmt.Errorf("failed to marshal job scores: %w", err)
		}
		scores = b
	}

	query := `
		INSERT OR REPLACE INTO analysis_jobs
		(id, concept_id, status, stage, progress, scores, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		job.ID,
		job.ConceptID,
		string(job.Status),
		job.Stage,
		job.Progress,
		nullableString(scores),
		job.Error,
		job.CreatedAt.UnixMilli(),
		job.UpdatedAt.UnixMilli(),
	)

	if err != nil {
		return fmt.Errorf("failed to save analysis job: %w", err)
	}

	return nil
}

// FindByID 根据 ID 查找分析任务
func (r *jobRepository) FindByID(id string) (*analysis.Job, error) {
	query := `
		SELECT id, concept_id, status, stage, progress, scores, error, created_at, updated_at
		FROM analysis_jobs
		WHERE id = ?`

	job, err := scanJob(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query analysis job: %w", err)
	}

	return job, nil
}

// FindByConceptID 查找概念下的分析任务
func (r *jobRepository) FindByConceptID(conceptID string) ([]*analysis.Job, error) {
	query := `
		SELECT id, concept_id, status, stage, progress, scores, error, created_at, updated_at
		FROM analysis_jobs
		WHERE concept_id = ?
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*analysis.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// scanJob 从查询结果扫描分析任务
func scanJob(row rowScanner) (*analysis.Job, error) {
	var job analysis.Job
	var status string
	var stage, scores, jobErr sql.NullString
	var createdAt, updatedAt int64

	if err := row.Scan(
		&job.ID,
		&job.ConceptID,
		&status,
		&stage,
		&job.Progress,
		&scores,
		&jobErr,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	job.Status = analysis.JobStatus(status)
	job.Stage = stage.String
	job.Error = jobErr.String
	job.CreatedAt = time.UnixMilli(createdAt)
	job.UpdatedAt = time.UnixMilli(updatedAt)

	if scores.Valid && scores.String != "" {
		var sc session.Scores
		if err := json.Unmarshal([]byte(scores.String), &sc); err == nil {
			job.Scores = &sc
		}
	}

	return &job, nil
}

// 编译时检查接口实现
var _ analysis.Repository = (*jobRepository)(nil)
