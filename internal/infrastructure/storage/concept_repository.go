package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/conceptlab/backend/internal/domain/concept"
	"github.com/google/uuid"
)

// conceptRepository 概念 SQLite 仓储实现
type conceptRepository struct {
	db *sql.DB
}

// NewConceptRepository 创建概念仓储实例
func NewConceptRepository(db *sql.DB) concept.Repository {
	// 确保表存在
	if err := initConceptTable(db); err != nil {
		// 初始化失败时记录错误但不阻止创建
		fmt.Printf("failed to init concepts table: %v\n", err)
	}
	return &conceptRepository{db: db}
}

// initConceptTable 初始化概念表
func initConceptTable(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS concepts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT,
		status TEXT NOT NULL,
		current_stage TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create concepts table: %w", err)
	}

	// 创建索引
	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_concepts_status ON concepts(status);
	CREATE INDEX IF NOT EXISTS idx_concepts_updated_at ON concepts(updated_at);
	`

	if _, err := db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create concepts indexes: %w", err)
	}

	return nil
}

// Save 保存概念
func (r *conceptRepository) Save(c *concept.Concept) error {
	// 如果 ID 为空，生成新的 UUID
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	query := `
		INSERT OR REPLACE INTO concepts
		(id, name, description, category, status, current_stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		c.ID,
		c.Name,
		c.Description,
		c.Category,
		string(c.Status),
		string(c.CurrentStage),
		c.CreatedAt.UnixMilli(),
		c.UpdatedAt.UnixMilli(),
	)

	if err != nil {
		return fmt.Errorf("failed to save concept: %w", err)
	}

	return nil
}

// FindByID 根据 ID 查找概念
func (r *conceptRepository) FindByID(id string) (*concept.Concept, error) {
	query := `
		SELECT id, name, description, category, status, current_stage, created_at, updated_at
		FROM concepts
		WHERE id = ?`

	row := r.db.QueryRow(query, id)
	c, err := scanConcept(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query concept: %w", err)
	}

	return c, nil
}

// FindAll 获取所有概念
func (r *conceptRepository) FindAll() ([]*concept.Concept, error) {
	query := `
		SELECT id, name, description, category, status, current_stage, created_at, updated_at
		FROM concepts
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query concepts: %w", err)
	}
	defer rows.Close()

	var items []*concept.Concept
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			continue
		}
		items = append(items, c)
	}

	return items, nil
}

// Delete 删除概念
func (r *conceptRepository) Delete(id string) error {
	query := `DELETE FROM concepts WHERE id = ?`
	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete concept: %w", err)
	}
	return nil
}

// rowScanner 兼容 *sql.Row 和 *sql.Rows 的扫描接口
type rowScanner interface {
	Scan(dest ...any) error
}

// scanConcept 从查询结果扫描概念
func scanConcept(row rowScanner) (*concept.Concept, error) {
	var c concept.Concept
	var status, stage string
	var category sql.NullString
	var createdAt, updatedAt int64

	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&category,
		&status,
		&stage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	c.Category = category.String
	c.Status = concept.Status(status)
	c.CurrentStage = concept.Stage(stage)
	c.CreatedAt = time.UnixMilli(createdAt)
	c.UpdatedAt = time.UnixMilli(updatedAt)

	return &c, nil
}

// 编译时检查接口实现
var _ concept.Repository = (*conceptRepository)(nil)
