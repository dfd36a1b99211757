// Package pipeline 实现可交付文档编译管线
// 原始会话记录 → 提取 → 编译 → 评分 → 缺口分析 → 问题排序 → 渲染
// 所有步骤都是输入的纯函数，调用之间不保留状态
package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/conceptlab/backend/internal/domain/deliverable"
	"github.com/conceptlab/backend/internal/domain/session"
)

// stagePriority 阶段排序优先级表，未知阶段为 0
// 注意：未知阶段名的条目总是排在最后，与实际时间先后无关
var stagePriority = map[string]int{
	"initial":    1,
	"research":   2,
	"analysis":   3,
	"refinement": 4,
	"validation": 5,
}

// insightPatterns 自由文本洞察扫描的五个固定模式（忽略大小写）
// 匹配以关键词开头、后接冒号或连接号的行
var insightPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*key insight\s*[:\-]\s*(.+)$`),
	regexp.MustCompile(`(?i)^\s*important\s*[:\-]\s*(.+)$`),
	regexp.MustCompile(`(?i)^\s*recommendations?\s*[:\-]\s*(.+)$`),
	regexp.MustCompile(`(?i)^\s*conclusions?\s*[:\-]\s*(.+)$`),
	regexp.MustCompile(`(?i)^\s*findings?\s*[:\-]\s*(.+)$`),
}

// minInsightLength 洞察文本的最小长度，过短的匹配丢弃
const minInsightLength = 10

// Extractor 数据提取器
// 将嵌套的会话/迭代记录拍平为五类归一化条目列表
type Extractor struct{}

// NewExtractor 创建数据提取器
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract 提取开发数据
// 对每个会话遍历两遍：一遍实时交互记录（camelCase 字段），
// 一遍持久化迭代记录（snake_case 字段），产出同一种归一化条目。
// 纯函数；缺失或畸形字段降级为空列表，永不报错
func (e *Extractor) Extract(data *session.DevelopmentData) *deliverable.ExtractedData {
	out := &deliverable.ExtractedData{
		Components:  []deliverable.ExtractedItem{},
		Research:    []deliverable.ExtractedItem{},
		Validations: []deliverable.ExtractedItem{},
		Refinements: []deliverable.ExtractedItem{},
		Insights:    []deliverable.ExtractedItem{},
	}

	if data == nil {
		return out
	}

	for _, s := range data.Sessions {
		if s == nil {
			continue
		}

		// 第一遍：实时交互记录
		for _, in := range s.Interactions {
			e.collectRecord(out, s.ID, in.Stage, in.Iteration, in.Timestamp, in.Response,
				in.ExtractedComponents, in.ExtractedResearch, in.ExtractedValidations, in.ExtractedRefinements)
		}

		// 第二遍：持久化迭代记录（字段命名约定不同，形状相同）
		for _, it := range s.Iterations {
			e.collectRecord(out, s.ID, it.Stage, it.Iteration, it.Timestamp, it.Response,
				it.ExtractedComponents, it.ExtractedResearch, it.ExtractedValidations, it.ExtractedRefinements)
		}
	}

	out.Components = rankItems(dedupeItems(out.Components))
	out.Research = rankItems(dedupeItems(out.Research))
	out.Validations = rankItems(dedupeItems(out.Validations))
	out.Refinements = rankItems(dedupeItems(out.Refinements))
	out.Insights = rankItems(dedupeItems(out.Insights))

	return out
}

// collectRecord 收集一条记录的结构化条目和自由文本洞察
func (e *Extractor) collectRecord(
	out *deliverable.ExtractedData,
	sessionID, stage string,
	iteration int,
	timestamp int64,
	response string,
	components, research, validations, refinements []session.Item,
) {
	out.Components = append(out.Components,
		normalizeItems(components, sessionID, stage, iteration, timestamp, deliverable.KindComponent)...)
	out.Research = append(out.Research,
		normalizeItems(research, sessionID, stage, iteration, timestamp, deliverable.KindResearch)...)
	out.Validations = append(out.Validations,
		normalizeItems(validations, sessionID, stage, iteration, timestamp, deliverable.KindValidation)...)
	out.Refinements = append(out.Refinements,
		normalizeItems(refinements, sessionID, stage, iteration, timestamp, deliverable.KindRefinement)...)

	out.Insights = append(out.Insights,
		scanResponseInsights(response, sessionID, stage, iteration, timestamp)...)
}

// normalizeItems 将原始条目转换为归一化形态
func normalizeItems(items []session.Item, sessionID, stage string, iteration int, timestamp int64, kind deliverable.ItemKind) []deliverable.ExtractedItem {
	out := make([]deliverable.ExtractedItem, 0, len(items))
	for _, it := range items {
		text := it.Text()
		if it.Name == "" && text == "" {
			continue
		}
		out = append(out, deliverable.ExtractedItem{
			Name:                  it.Name,
			Content:               text,
			SessionID:             sessionID,
			Stage:                 stage,
			Iteration:             iteration,
			Timestamp:             timestamp,
			Kind:                  kind,
			Dependencies:          dedupeStrings(it.Dependencies),
			TechnicalRequirements: dedupeStrings(it.TechnicalRequirements),
		})
	}
	return out
}

// scanResponseInsights 扫描自由文本响应中的洞察行
// 匹配文本长度超过 10 才生成条目，标记来源为 llm_response
func scanResponseInsights(response, sessionID, stage string, iteration int, timestamp int64) []deliverable.ExtractedItem {
	if response == "" {
		return nil
	}

	var out []deliverable.ExtractedItem
	for _, line := range strings.Split(response, "\n") {
		for _, pattern := range insightPatterns {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			text := strings.TrimSpace(m[1])
			if len(text) <= minInsightLength {
				continue
			}
			out = append(out, deliverable.ExtractedItem{
				Content:   text,
				SessionID: sessionID,
				Stage:     stage,
				Iteration: iteration,
				Timestamp: timestamp,
				Kind:      deliverable.KindInsight,
				Source:    "llm_response",
			})
			// 一行最多生成一条洞察
			break
		}
	}
	return out
}

// GroupingKey 计算归一化分组键
// 小写、去标点、取 name+content 的前 50 个字符
func GroupingKey(name, content string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name + content) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case r > 127:
			// 非 ASCII 字符原样保留
			b.WriteRune(r)
		}
	}
	key := b.String()
	runes := []rune(key)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return key
}

// dedupeItems 按归一化键去重
// 同键条目中时间戳最新者胜出，较旧条目中语义不同的尾部内容拼接到描述上
func dedupeItems(items []deliverable.ExtractedItem) []deliverable.ExtractedItem {
	if len(items) == 0 {
		return items
	}

	type group struct {
		order int
		items []deliverable.ExtractedItem
	}

	groups := make(map[string]*group)
	var keys []string
	for _, it := range items {
		key := GroupingKey(it.Name, it.Content)
		g, ok := groups[key]
		if !ok {
			g = &group{order: len(keys)}
			groups[key] = g
			keys = append(keys, key)
		}
		g.items = append(g.items, it)
	}

	out := make([]deliverable.ExtractedItem, 0, len(keys))
	for _, key := range keys {
		g := groups[key]

		// 组内按时间戳倒序，最新者为代表
		sort.SliceStable(g.items, func(i, j int) bool {
			return g.items[i].Timestamp > g.items[j].Timestamp
		})

		rep := g.items[0]
		for _, older := range g.items[1:] {
			// 较旧重复项的尾部差异内容以字符串拼接方式保留
			if older.Content != "" && older.Content != rep.Content &&
				!strings.Contains(rep.Content, older.Content) {
				rep.Content = rep.Content + " " + older.Content
			}
			// 依赖与技术要求取并集，保留首次出现顺序
			if len(older.Dependencies) > 0 {
				rep.Dependencies = dedupeStrings(append(rep.Dependencies, older.Dependencies...))
			}
			if len(older.TechnicalRequirements) > 0 {
				rep.TechnicalRequirements = dedupeStrings(append(rep.TechnicalRequirements, older.TechnicalRequirements...))
			}
		}
		out = append(out, rep)
	}

	return out
}

// rankItems 按阶段优先级倒序、迭代号倒序排列
func rankItems(items []deliverable.ExtractedItem) []deliverable.ExtractedItem {
	sort.SliceStable(items, func(i, j int) bool {
		pi := stagePriority[items[i].Stage]
		pj := stagePriority[items[j].Stage]
		if pi != pj {
			return pi > pj
		}
		return items[i].Iteration > items[j].Iteration
	})
	return items
}
