package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainconcept "github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/domain/session"
)

// memConceptRepo 内存概念仓储
type memConceptRepo struct {
	concepts map[string]*domainconcept.Concept
}

func newMemConceptRepo() *memConceptRepo {
	return &memConceptRepo{concepts: make(map[string]*domainconcept.Concept)}
}

func (r *memConceptRepo) Save(c *domainconcept.Concept) error { r.concepts[c.ID] = c; return nil }
func (r *memConceptRepo) FindByID(id string) (*domainconcept.Concept, error) {
	return r.concepts[id], nil
}
func (r *memConceptRepo) FindAll() ([]*domainconcept.Concept, error) {
	out := make([]*domainconcept.Concept, 0, len(r.concepts))
	for _, c := range r.concepts {
		out = append(out, c)
	}
	return out, nil
}
func (r *memConceptRepo) Delete(id string) error { delete(r.concepts, id); return nil }

// memSessionRepo 内存会话仓储
type memSessionRepo struct {
	sessions map[string]*session.DevelopmentSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*session.DevelopmentSession)}
}

func (r *memSessionRepo) Save(s *session.DevelopmentSession) error { r.sessions[s.ID] = s; return nil }
func (r *memSessionRepo) FindByID(id string) (*session.DevelopmentSession, error) {
	return r.sessions[id], nil
}
func (r *memSessionRepo) FindByConceptID(conceptID string) ([]*session.DevelopmentSession, error) {
	var out []*session.DevelopmentSession
	for _, s := range r.sessions {
		if s.ConceptID == conceptID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (r *memSessionRepo) Delete(id string) error { delete(r.sessions, id); return nil }

func newTestService() (*Service, *memConceptRepo, *memSessionRepo) {
	conceptRepo := newMemConceptRepo()
	sessionRepo := newMemSessionRepo()
	return NewService(conceptRepo, sessionRepo), conceptRepo, sessionRepo
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService()

	t.Run("创建概念初始状态", func(t *testing.T) {
		cpt, err := svc.Create("My Concept", "a description")
		require.NoError(t, err)

		assert.NotEmpty(t, cpt.ID)
		assert.Equal(t, "My Concept", cpt.Name)
		assert.Equal(t, domainconcept.StageEvaluate, cpt.CurrentStage)
		assert.Equal(t, domainconcept.StatusDraft, cpt.Status)
	})

	t.Run("名称去除首尾空白", func(t *testing.T) {
		cpt, err := svc.Create("  Trimmed  ", "")
		require.NoError(t, err)
		assert.Equal(t, "Trimmed", cpt.Name)
	})

	t.Run("空名称报错", func(t *testing.T) {
		_, err := svc.Create("   ", "desc")
		assert.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.concepts["c1"] = &domainconcept.Concept{ID: "c1", Name: "Existing"}

	t.Run("查询已有概念", func(t *testing.T) {
		cpt, err := svc.Get("c1")
		require.NoError(t, err)
		assert.Equal(t, "Existing", cpt.Name)
	})

	t.Run("不存在的概念报错", func(t *testing.T) {
		_, err := svc.Get("missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "concept not found")
	})
}

func TestUpdate(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.concepts["c1"] = &domainconcept.Concept{
		ID: "c1", Name: "Before", Description: "old", Status: domainconcept.StatusDraft,
	}

	t.Run("更新指定字段", func(t *testing.T) {
		cpt, err := svc.Update("c1", "After", "new", domainconcept.StatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, "After", cpt.Name)
		assert.Equal(t, "new", cpt.Description)
		assert.Equal(t, domainconcept.StatusInProgress, cpt.Status)
	})

	t.Run("空字段保留原值", func(t *testing.T) {
		cpt, err := svc.Update("c1", "", "", "")
		require.NoError(t, err)
		assert.Equal(t, "After", cpt.Name)
		assert.Equal(t, domainconcept.StatusInProgress, cpt.Status)
	})
}

func TestAdvanceStage(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.concepts["c1"] = &domainconcept.Concept{ID: "c1", Name: "X", CurrentStage: domainconcept.StageEvaluate}

	cpt, err := svc.AdvanceStage("c1")
	require.NoError(t, err)
	assert.Equal(t, domainconcept.StageAnalyze, cpt.CurrentStage)
	assert.Equal(t, domainconcept.StageAnalyze, repo.concepts["c1"].CurrentStage, "推进后应落盘")
}

func TestDelete(t *testing.T) {
	svc, conceptRepo, sessionRepo := newTestService()
	conceptRepo.concepts["c1"] = &domainconcept.Concept{ID: "c1", Name: "Doomed"}
	sessionRepo.sessions["s1"] = &session.DevelopmentSession{ID: "s1", ConceptID: "c1"}
	sessionRepo.sessions["s2"] = &session.DevelopmentSession{ID: "s2", ConceptID: "c1"}
	sessionRepo.sessions["other"] = &session.DevelopmentSession{ID: "other", ConceptID: "c2"}

	require.NoError(t, svc.Delete("c1"))

	assert.NotContains(t, conceptRepo.concepts, "c1")
	assert.NotContains(t, sessionRepo.sessions, "s1", "概念下的会话应级联删除")
	assert.NotContains(t, sessionRepo.sessions, "s2")
	assert.Contains(t, sessionRepo.sessions, "other", "其他概念的会话不受影响")
}
