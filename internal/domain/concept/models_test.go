package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceStage(t *testing.T) {
	cases := []struct {
		name string
		from Stage
		want Stage
	}{
		{"评估进入分析", StageEvaluate, StageAnalyze},
		{"分析进入精炼", StageAnalyze, StageRefine},
		{"精炼进入迭代", StageRefine, StageReiterate},
		{"迭代回到分析", StageReiterate, StageAnalyze},
		{"未知阶段重置为评估", Stage("bogus"), StageEvaluate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Concept{CurrentStage: tc.from}
			before := c.UpdatedAt

			c.AdvanceStage()

			assert.Equal(t, tc.want, c.CurrentStage)
			assert.True(t, c.UpdatedAt.After(before), "推进阶段应刷新更新时间")
		})
	}
}

func TestMarkCompleted(t *testing.T) {
	c := &Concept{Status: StatusInProgress}
	c.MarkCompleted()
	assert.Equal(t, StatusCompleted, c.Status)
}

func TestExportFileName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"小写化", "SmartNotes", "smartnotes"},
		{"空格替换为下划线", "Smart Notes App", "smart_notes_app"},
		{"特殊字符替换", "AI/ML: v2!", "ai_ml__v2_"},
		{"数字保留", "app2go", "app2go"},
		{"空名称使用缺省值", "", "concept"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Concept{Name: tc.input}
			assert.Equal(t, tc.expected, c.ExportFileName())
		})
	}
}

func TestIsValidStage(t *testing.T) {
	assert.True(t, IsValidStage("evaluate"))
	assert.True(t, IsValidStage("reiterate"))
	assert.False(t, IsValidStage("unknown"))
	assert.False(t, IsValidStage(""))
}
