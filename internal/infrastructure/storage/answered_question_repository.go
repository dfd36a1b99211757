package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// AnsweredQuestionRepository 已回答问题日志仓储接口
// 问题 ID 由触发规则决定，同一结构性缺口总是产生同一 ID；
// 已回答集合作为过滤集传入问题优先级排序
type AnsweredQuestionRepository interface {
	// MarkAnswered 记录一个问题已被回答
	MarkAnswered(conceptID, questionID, answer string) error

	// FindAnsweredIDs 获取概念下所有已回答的问题 ID 集合
	FindAnsweredIDs(conceptID string) (map[string]bool, error)

	// FindAnswers 获取概念下所有问题回答，按回答时间升序
	FindAnswers(conceptID string) ([]AnsweredQuestion, error)

	// Clear 清空概念下的已回答记录
	Clear(conceptID string) error
}

// AnsweredQuestion 已回答问题记录
type AnsweredQuestion struct {
	ConceptID  string
	QuestionID string
	Answer     string
	AnsweredAt time.Time
}

// answeredQuestionRepository SQLite 实现
type answeredQuestionRepository struct {
	db *sql.DB
}

// NewAnsweredQuestionRepository 创建已回答问题仓储实例
func NewAnsweredQuestionRepository(db *sql.DB) AnsweredQuestionRepository {
	if err := initAnsweredTable(db); err != nil {
		fmt.Printf("failed to init answered_questions table: %v\n", err)
	}
	return &answeredQuestionRepository{db: db}
}

// initAnsweredTable 初始化已回答问题表
func initAnsweredTable(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS answered_questions (
		concept_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		answer TEXT,
		answered_at INTEGER NOT NULL,
		PRIMARY KEY (concept_id, question_id)
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create answered_questions table: %w", err)
	}

	return nil
}

// MarkAnswered 记录一个问题已被回答
func (r *answeredQuestionRepository) MarkAnswered(conceptID, questionID, answer string) error {
	query := `
		INSERT OR REPLACE INTO answered_questions
		(concept_id, question_id, answer, answered_at)
		VALUES (?, ?, ?, ?)`

	_, err := r.db.Exec(query, conceptID, questionID, answer, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to mark question answered: %w", err)
	}
	return nil
}

// FindAnsweredIDs 获取已回答的问题 ID 集合
func (r *answeredQuestionRepository) FindAnsweredIDs(conceptID string) (map[string]bool, error) {
	query := `SELECT question_id FROM answered_questions WHERE concept_id = ?`

	rows, err := r.db.Query(query, conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answered questions: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids[id] = true
	}

	return ids, nil
}

// FindAnswers 获取所有问题回答
func (r *answeredQuestionRepository) FindAnswers(conceptID string) ([]AnsweredQuestion, error) {
	query := `
		SELECT concept_id, question_id, answer, answered_at
		FROM answered_questions
		WHERE concept_id = ?
		ORDER BY answered_at ASC`

	rows, err := r.db.Query(query, conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var items []AnsweredQuestion
	for rows.Next() {
		var item AnsweredQuestion
		var answer sql.NullString
		var answeredAt int64

		if err := rows.Scan(&item.ConceptID, &item.QuestionID, &answer, &answeredAt); err != nil {
			continue
		}

		item.Answer = answer.String
		item.AnsweredAt = time.UnixMilli(answeredAt)
		items = append(items, item)
	}

	return items, nil
}

// Clear 清空已回答记录
func (r *answeredQuestionRepository) Clear(conceptID string) error {
	query := `DELETE FROM answered_questions WHERE concept_id = ?`
	_, err := r.db.Exec(query, conceptID)
	if err != nil {
		return fmt.Errorf("failed to clear answered questions: %w", err)
	}
	return nil
}

// 编译时检查接口实现
var _ AnsweredQuestionRepository = (*answeredQuestionRepository)(nil)
