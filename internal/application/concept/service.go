// Package concept 实现概念的应用层服务
package concept

import (
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	domainconcept "github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/domain/session"
	"github.com/conceptlab/backend/internal/infrastructure/log"
)

// Service 概念管理服务
type Service struct {
	conceptRepo domainconcept.Repository
	sessionRepo session.Repository
	logger      *slog.Logger
}

// NewService 创建概念服务
func NewService(conceptRepo domainconcept.Repository, sessionRepo session.Repository) *Service {
	return &Service{
		conceptRepo: conceptRepo,
		sessionRepo: sessionRepo,
		logger:      log.NewModuleLogger("concept", "service"),
	}
}

// Create 创建概念
func (s *Service) Create(name, description string) (*domainconcept.Concept, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("concept name is required")
	}

	now := time.Now()
	cpt := &domainconcept.Concept{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  description,
		CurrentStage: domainconcept.StageEvaluate,
		Status:       domainconcept.StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.conceptRepo.Save(cpt); err != nil {
		return nil, fmt.Errorf("failed to save concept: %w", err)
	}

	s.logger.Info("Concept created", "conceptID", cpt.ID, "name", name)
	return cpt, nil
}

// Get 查询概念
func (s *Service) Get(id string) (*domainconcept.Concept, error) {
	cpt, err := s.conceptRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept: %w", err)
	}
	if cpt == nil {
		return nil, fmt.Errorf("concept not found: %s", id)
	}
	return cpt, nil
}

// List 列出所有概念
func (s *Service) List() ([]*domainconcept.Concept, error) {
	concepts, err := s.conceptRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list concepts: %w", err)
	}
	return concepts, nil
}

// Update 更新概念的名称、描述与状态
func (s *Service) Update(id, name, description string, status domainconcept.Status) (*domainconcept.Concept, error) {
	cpt, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		cpt.Name = name
	}
	if description != "" {
		cpt.Description = description
	}
	if status != "" {
		cpt.Status = status
	}
	cpt.UpdatedAt = time.Now()

	if err := s.conceptRepo.Save(cpt); err != nil {
		return nil, fmt.Errorf("failed to update concept: %w", err)
	}
	return cpt, nil
}

// AdvanceStage 推进概念到下一分析阶段
func (s *Service) AdvanceStage(id string) (*domainconcept.Concept, error) {
	cpt, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	cpt.AdvanceStage()
	if err := s.conceptRepo.Save(cpt); err != nil {
		return nil, fmt.Errorf("failed to advance stage: %w", err)
	}

	s.logger.Info("Concept stage advanced", "conceptID", id, "stage", cpt.CurrentStage)
	return cpt, nil
}

// Delete 删除概念及其会话
func (s *Service) Delete(id string) error {
	sessions, err := s.sessionRepo.FindByConceptID(id)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	for _, sess := range sessions {
		if err := s.sessionRepo.Delete(sess.ID); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", sess.ID, err)
		}
	}

	if err := s.conceptRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete concept: %w", err)
	}

	s.logger.Info("Concept deleted", "conceptID", id, "sessions", len(sessions))
	return nil
}
