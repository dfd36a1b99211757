package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendInteraction(t *testing.T) {
	t.Run("推进迭代计数与阶段", func(t *testing.T) {
		s := &DevelopmentSession{ID: "s1", Iteration: 1, CurrentStage: "initial"}

		s.AppendInteraction(Interaction{
			Stage:     "research",
			Iteration: 2,
			Scores:    &Scores{Completeness: 0.3},
		})

		require.Len(t, s.Interactions, 1)
		assert.Equal(t, 2, s.Iteration)
		assert.Equal(t, "research", s.CurrentStage)
		require.NotNil(t, s.LatestScores)
		assert.InDelta(t, 0.3, s.LatestScores.Completeness, 1e-9)
	})

	t.Run("迭代号不回退", func(t *testing.T) {
		s := &DevelopmentSession{Iteration: 5}
		s.AppendInteraction(Interaction{Iteration: 3})
		assert.Equal(t, 5, s.Iteration)
	})

	t.Run("空阶段与空评分不覆盖", func(t *testing.T) {
		s := &DevelopmentSession{CurrentStage: "analysis", LatestScores: &Scores{Clarity: 0.8}}
		s.AppendInteraction(Interaction{Iteration: 1})
		assert.Equal(t, "analysis", s.CurrentStage)
		assert.InDelta(t, 0.8, s.LatestScores.Clarity, 1e-9)
	})
}

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		status   Status
		terminal bool
	}{
		{StatusRunning, false},
		{StatusStopped, true},
		{StatusCompleted, true},
		{StatusFailed, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			s := &DevelopmentSession{Status: tc.status}
			assert.Equal(t, tc.terminal, s.IsTerminal())
		})
	}
}

func TestLatestSession(t *testing.T) {
	now := time.Now()

	t.Run("nil或空数据返回nil", func(t *testing.T) {
		var d *DevelopmentData
		assert.Nil(t, d.LatestSession())
		assert.Nil(t, (&DevelopmentData{}).LatestSession())
	})

	t.Run("返回最近更新的会话", func(t *testing.T) {
		d := &DevelopmentData{
			Sessions: []*DevelopmentSession{
				{ID: "old", UpdatedAt: now.Add(-time.Hour)},
				{ID: "newest", UpdatedAt: now},
				{ID: "middle", UpdatedAt: now.Add(-time.Minute)},
			},
		}
		latest := d.LatestSession()
		require.NotNil(t, latest)
		assert.Equal(t, "newest", latest.ID)
	})
}
