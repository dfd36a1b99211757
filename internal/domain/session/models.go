package session

import "time"

// Status 开发会话状态
type Status string

const (
	// StatusRunning 迭代进行中
	StatusRunning Status = "running"
	// StatusStopped 已被用户停止
	StatusStopped Status = "stopped"
	// StatusCompleted 正常结束
	StatusCompleted Status = "completed"
	// StatusFailed 出错终止
	StatusFailed Status = "failed"
)

// Scores 一次迭代产出的质量评分，0-1 区间
type Scores struct {
	Completeness    float64 `json:"completeness"`
	Clarity         float64 `json:"clarity"`
	Actionability   float64 `json:"actionability"`
	MarketReadiness float64 `json:"marketReadiness"`
}

// Interaction 实时交互记录（内存中的 camelCase 形态）
// 远端迭代引擎每轮返回一条，字段均为可选
type Interaction struct {
	Stage                string   `json:"stage"`
	Iteration            int      `json:"iteration"`
	Response             string   `json:"response"`
	ExtractedComponents  []Item   `json:"extractedComponents,omitempty"`
	ExtractedResearch    []Item   `json:"extractedResearch,omitempty"`
	ExtractedValidations []Item   `json:"extractedValidations,omitempty"`
	ExtractedRefinements []Item   `json:"extractedRefinements,omitempty"`
	Timestamp            int64    `json:"timestamp"` // Unix 毫秒时间戳
	Scores               *Scores  `json:"scores,omitempty"`
}

// IterationRecord 持久化迭代记录（snake_case 形态）
// 与 Interaction 同构，但沿用外部存储的字段命名约定
type IterationRecord struct {
	Stage                string  `json:"stage"`
	Iteration            int     `json:"iteration"`
	Response             string  `json:"response"`
	ExtractedComponents  []Item  `json:"extracted_components,omitempty"`
	ExtractedResearch    []Item  `json:"extracted_research,omitempty"`
	ExtractedValidations []Item  `json:"extracted_validations,omitempty"`
	ExtractedRefinements []Item  `json:"extracted_refinements,omitempty"`
	Timestamp            int64   `json:"timestamp"`
	Scores               *Scores `json:"scores,omitempty"`
}

// Item 交互记录中携带的结构化条目
// 条目级字段在实时与持久化两种形态中命名一致
type Item struct {
	Name                  string   `json:"name,omitempty"`
	Description           string   `json:"description,omitempty"`
	Content               string   `json:"content,omitempty"`
	Dependencies          []string `json:"dependencies,omitempty"`
	TechnicalRequirements []string `json:"technicalRequirements,omitempty"`
}

// Text 返回条目的文本内容，description 优先于 content
func (i Item) Text() string {
	if i.Description != "" {
		return i.Description
	}
	return i.Content
}

// DevelopmentSession AI 开发循环的一次运行
type DevelopmentSession struct {
	ID           string
	ConceptID    string
	Status       Status
	CurrentStage string
	Iteration    int
	Interactions []Interaction
	Iterations   []IterationRecord
	LatestScores *Scores
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AppendInteraction 追加一条交互记录并推进迭代计数
func (s *DevelopmentSession) AppendInteraction(in Interaction) {
	s.Interactions = append(s.Interactions, in)
	if in.Iteration > s.Iteration {
		s.Iteration = in.Iteration
	}
	if in.Stage != "" {
		s.CurrentStage = in.Stage
	}
	if in.Scores != nil {
		s.LatestScores = in.Scores
	}
	s.UpdatedAt = time.Now()
}

// IsTerminal 会话是否处于终止状态
func (s *DevelopmentSession) IsTerminal() bool {
	return s.Status == StatusStopped || s.Status == StatusCompleted || s.Status == StatusFailed
}

// DevelopmentData 编译管线的输入：一个概念下的全部会话
// 管线只读，不持有所有权
type DevelopmentData struct {
	ConceptID string
	Sessions  []*DevelopmentSession
}

// LatestSession 返回最近更新的会话，没有则返回 nil
func (d *DevelopmentData) LatestSession() *DevelopmentSession {
	if d == nil || len(d.Sessions) == 0 {
		return nil
	}
	latest := d.Sessions[0]
	for _, s := range d.Sessions[1:] {
		if s.UpdatedAt.After(latest.UpdatedAt) {
			latest = s
		}
	}
	return latest
}
