package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/conceptlab/backend/internal/domain/session"
	"github.com/google/uuid"
)

// sessionRepository 开发会话 SQLite 仓储实现
// 交互与迭代记录以 JSON 列存储，读取失败降级为空列表
type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository 创建开发会话仓储实例
func NewSessionRepository(db *sql.DB) session.Repository {
	if err := initSessionTable(db); err != nil {
		fmt.Printf("failed to init dev_sessions table: %v\n", err)
	}
	return &sessionRepository{db: db}
}

// initSessionTable 初始化会话表
func initSessionTable(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS dev_sessions (
		id TEXT PRIMARY KEY,
		concept_id TEXT NOT NULL,
		status TEXT NOT NULL,
		current_stage TEXT,
		iteration INTEGER NOT NULL DEFAULT 0,
		interactions TEXT,
		iterations TEXT,
		latest_scores TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create dev_sessions table: %w", err)
	}

	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_dev_sessions_concept ON dev_sessions(concept_id);
	CREATE INDEX IF NOT EXISTS idx_dev_sessions_updated_at ON dev_sessions(updated_at);
	`

	if _, err := db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create dev_sessions indexes: %w", err)
	}

	return nil
}

// Save 保存会话
func (r *sessionRepository) Save(s *session.DevelopmentSession) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	interactions, err := json.Marshal(s.Interactions)
	if err != nil {
		return fmt.Errorf("failed to marshal interactions: %w", err)
	}
	iterations, err := json.Marshal(s.Iterations)
	if err != nil {
		return fmt.Errorf("failed to marshal iterations: %w", err)
	}

	var scores []byte
	if s.LatestScores != nil {
		scores, err = json.Marshal(s.LatestScores)
		if err != nil {
			return fmt.Errorf("failed to marshal scores: %w", err)
		}
	}

	query := `
		INSERT OR REPLACE INTO dev_sessions
		(id, concept_id, status, current_stage, iteration, interactions, iterations, latest_scores, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		s.ID,
		s.ConceptID,
		string(s.Status),
		s.CurrentStage,
		s.Iteration,
		string(interactions),
		string(iterations),
		nullableString(scores),
		s.CreatedAt.UnixMilli(),
		s.UpdatedAt.UnixMilli(),
	)

	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// FindByID 根据 ID 查找会话
func (r *sessionRepository) FindByID(id string) (*session.DevelopmentSession, error) {
	query := `
		SELECT id, concept_id, status, current_stage, iteration, interactions, iterations, latest_scores, created_at, updated_at
		FROM dev_sessions
		WHERE id = ?`

	s, err := scanSession(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return s, nil
}

// FindByConceptID 查找概念下的所有会话
func (r *sessionRepository) FindByConceptID(conceptID string) ([]*session.DevelopmentSession, error) {
	query := `
		SELECT id, concept_id, status, current_stage, iteration, interactions, iterations, latest_scores, created_at, updated_at
		FROM dev_sessions
		WHERE concept_id = ?
		ORDER BY created_at ASC`

	rows, err := r.db.Query(query, conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var items []*session.DevelopmentSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			continue
		}
		items = append(items, s)
	}

	return items, nil
}

// Delete 删除会话
func (r *sessionRepository) Delete(id string) error {
	query := `DELETE FROM dev_sessions WHERE id = ?`
	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// scanSession 从查询结果扫描会话
func scanSession(row rowScanner) (*session.DevelopmentSession, error) {
	var s session.DevelopmentSession
	var status string
	var stage, interactions, iterations, scores sql.NullString
	var createdAt, updatedAt int64

	if err := row.Scan(
		&s.ID,
		&s.ConceptID,
		&status,
		&stage,
		&s.Iteration,
		&interactions,
		&iterations,
		&scores,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	s.Status = session.Status(status)
	s.CurrentStage = stage.String
	s.CreatedAt = time.UnixMilli(createdAt)
	s.UpdatedAt = time.UnixMilli(updatedAt)

	// JSON 列损坏时降级为空列表，不报错
	if interactions.Valid {
		_ = json.Unmarshal([]byte(interactions.String), &s.Interactions)
	}
	if iterations.Valid {
		_ = json.Unmarshal([]byte(iterations.String), &s.Iterations)
	}
	if scores.Valid && scores.String != "" {
		var sc session.Scores
		if err := json.Unmarshal([]byte(scores.String), &sc); err == nil {
			s.LatestScores = &sc
		}
	}

	return &s, nil
}

// nullableString 空字节切片转为 NULL
func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// 编译时检查接口实现
var _ session.Repository = (*sessionRepository)(nil)
