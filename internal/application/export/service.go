package export

import (
	"fmt"
	"time"

	"log/slog"

	appdeliverable "github.com/conceptlab/backend/internal/application/deliverable"
	"github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/domain/session"
	"github.com/conceptlab/backend/internal/infrastructure/log"
)

// Service 导出/导入服务
type Service struct {
	conceptRepo        concept.Repository
	sessionRepo        session.Repository
	deliverableService *appdeliverable.Service
	renderer           *Renderer
	validator          *ImportValidator
	logger             *slog.Logger
}

// NewService 创建导出服务
func NewService(
	conceptRepo concept.Repository,
	sessionRepo session.Repository,
	deliverableService *appdeliverable.Service,
	renderer *Renderer,
	validator *ImportValidator,
) *Service {
	return &Service{
		conceptRepo:        conceptRepo,
		sessionRepo:        sessionRepo,
		deliverableService: deliverableService,
		renderer:           renderer,
		validator:          validator,
		logger:             log.NewModuleLogger("export", "service"),
	}
}

// Export 编译并渲染概念的可交付文档
func (s *Service) Export(conceptID string, format Format) (*Artifact, error) {
	cpt, err := s.conceptRepo.FindByID(conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept: %w", err)
	}
	if cpt == nil {
		return nil, fmt.Errorf("concept not found: %s", conceptID)
	}

	compiled, err := s.deliverableService.Compile(conceptID)
	if err != nil {
		return nil, err
	}

	artifact, err := s.renderer.Render(cpt, compiled, format)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deliverable exported",
		"conceptID", conceptID,
		"format", format,
		"file", artifact.FileName,
		"bytes", len(artifact.Data),
	)
	return artifact, nil
}

// ImportSessions 校验并导入会话数据
// 返回导入的会话数量和校验错误列表；校验失败时不落库
func (s *Service) ImportSessions(data []byte) (int, []string, error) {
	imp, issues, err := s.validator.Validate(data)
	if err != nil {
		return 0, nil, err
	}
	if len(issues) > 0 {
		return 0, issues, nil
	}

	cpt, err := s.conceptRepo.FindByID(imp.ConceptID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load concept: %w", err)
	}
	if cpt == nil {
		return 0, nil, fmt.Errorf("concept not found: %s", imp.ConceptID)
	}

	imported := 0
	now := time.Now()
	for _, is := range imp.Sessions {
		sess := &session.DevelopmentSession{
			ID:           is.ID,
			ConceptID:    imp.ConceptID,
			Status:       is.Status,
			CurrentStage: is.CurrentStage,
			Iteration:    is.Iteration,
			Iterations:   is.Iterations,
			LatestScores: is.LatestScores,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.sessionRepo.Save(sess); err != nil {
			return imported, nil, fmt.Errorf("failed to save session %s: %w", is.ID, err)
		}
		imported++
	}

	s.logger.Info("Sessions imported", "conceptID", imp.ConceptID, "count", imported)
	return imported, nil, nil
}
