package concept

import "time"

// Stage 概念分析阶段
type Stage string

const (
	// StageEvaluate 评估阶段
	StageEvaluate Stage = "evaluate"
	// StageAnalyze 分析阶段
	StageAnalyze Stage = "analyze"
	// StageRefine 精炼阶段
	StageRefine Stage = "refine"
	// StageReiterate 迭代阶段
	StageReiterate Stage = "reiterate"
)

// Status 概念状态
type Status string

const (
	// StatusDraft 草稿
	StatusDraft Status = "draft"
	// StatusInProgress 分析进行中
	StatusInProgress Status = "in_progress"
	// StatusCompleted 分析完成
	StatusCompleted Status = "completed"
	// StatusArchived 已归档
	StatusArchived Status = "archived"
)

// Concept 概念实体，仪表盘的顶层分析对象
type Concept struct {
	ID           string
	Name         string
	Description  string
	Category     string
	Status       Status
	CurrentStage Stage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdvanceStage 推进到下一个分析阶段
// 四阶段按固定顺序流转，reiterate 之后回到 analyze（进入下一轮）
func (c *Concept) AdvanceStage() {
	switch c.CurrentStage {
	case StageEvaluate:
		c.CurrentStage = StageAnalyze
	case StageAnalyze:
		c.CurrentStage = StageRefine
	case StageRefine:
		c.CurrentStage = StageReiterate
	case StageReiterate:
		c.CurrentStage = StageAnalyze
	default:
		c.CurrentStage = StageEvaluate
	}
	c.UpdatedAt = time.Now()
}

// MarkCompleted 标记分析完成
func (c *Concept) MarkCompleted() {
	c.Status = StatusCompleted
	c.UpdatedAt = time.Now()
}

// ExportFileName 生成导出文件名（不含扩展名）
// 名称小写化，非字母数字字符替换为下划线
func (c *Concept) ExportFileName() string {
	name := []rune(c.Name)
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "concept"
	}
	return string(out)
}

// IsValidStage 检查阶段名是否合法
func IsValidStage(s string) bool {
	switch Stage(s) {
	case StageEvaluate, StageAnalyze, StageRefine, StageReiterate:
		return true
	}
	return false
}
