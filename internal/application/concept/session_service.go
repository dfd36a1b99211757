package concept

import (
	"fmt"

	"log/slog"

	"github.com/conceptlab/backend/internal/domain/session"
	"github.com/conceptlab/backend/internal/infrastructure/log"
)

// SessionService 开发会话查询服务
type SessionService struct {
	sessionRepo session.Repository
	logger      *slog.Logger
}

// NewSessionService 创建会话服务
func NewSessionService(sessionRepo session.Repository) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		logger:      log.NewModuleLogger("concept", "session_service"),
	}
}

// ListByConcept 列出概念下的所有会话
func (s *SessionService) ListByConcept(conceptID string) ([]*session.DevelopmentSession, error) {
	sessions, err := s.sessionRepo.FindByConceptID(conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Get 查询会话
func (s *SessionService) Get(id string) (*session.DevelopmentSession, error) {
	sess, err := s.sessionRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return sess, nil
}

// Delete 删除会话
func (s *SessionService) Delete(id string) error {
	if err := s.sessionRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info("Session deleted", "sessionID", id)
	return nil
}
