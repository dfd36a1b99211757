// Package deliverable 编排可交付文档的编译、缺口分析、智能问题与增强
package deliverable

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"log/slog"

	"github.com/conceptlab/backend/internal/application/pipeline"
	"github.com/conceptlab/backend/internal/domain/concept"
	domaindeliverable "github.com/conceptlab/backend/internal/domain/deliverable"
	"github.com/conceptlab/backend/internal/domain/session"
	"github.com/conceptlab/backend/internal/infrastructure/llm"
	"github.com/conceptlab/backend/internal/infrastructure/log"
	"github.com/conceptlab/backend/internal/infrastructure/metrics"
	"github.com/conceptlab/backend/internal/infrastructure/storage"
)

// Service 可交付文档服务
// 编译是纯函数，结果不做持久化，每次请求基于当前会话数据重新计算
type Service struct {
	conceptRepo  concept.Repository
	sessionRepo  session.Repository
	answeredRepo storage.AnsweredQuestionRepository
	compiler     *pipeline.Compiler
	quality      *pipeline.QualityCalculator
	gaps         *pipeline.GapAnalyzer
	questions    *pipeline.QuestionPrioritizer
	enhancer     llm.EnhancerClient
	logger       *slog.Logger
}

// NewService 创建可交付文档服务
func NewService(
	conceptRepo concept.Repository,
	sessionRepo session.Repository,
	answeredRepo storage.AnsweredQuestionRepository,
	compiler *pipeline.Compiler,
	quality *pipeline.QualityCalculator,
	gaps *pipeline.GapAnalyzer,
	questions *pipeline.QuestionPrioritizer,
	enhancer llm.EnhancerClient,
) *Service {
	return &Service{
		conceptRepo:  conceptRepo,
		sessionRepo:  sessionRepo,
		answeredRepo: answeredRepo,
		compiler:     compiler,
		quality:      quality,
		gaps:         gaps,
		questions:    questions,
		enhancer:     enhancer,
		logger:       log.NewModuleLogger("deliverable", "service"),
	}
}

// Compile 编译概念的可交付文档
func (s *Service) Compile(conceptID string) (*domaindeliverable.CompiledDeliverable, error) {
	cpt, data, err := s.loadInputs(conceptID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := s.compiler.Compile(cpt, data)
	metrics.DeliverableCompilations.Inc()
	metrics.CompilationDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("Deliverable compiled",
		"conceptID", conceptID,
		"sessions", len(data.Sessions),
		"components", len(result.TechnicalSpecification.Components),
	)
	return result, nil
}

// AnalyzeGaps 对编译结果做缺口分析
func (s *Service) AnalyzeGaps(conceptID string) (*domaindeliverable.GapAnalysisResult, error) {
	compiled, err := s.Compile(conceptID)
	if err != nil {
		return nil, err
	}
	return s.gaps.AnalyzeGaps(compiled), nil
}

// Questions 生成概念的智能问题计划
// 已回答的问题在排序前被过滤掉
func (s *Service) Questions(conceptID string) (*domaindeliverable.QuestionPlan, error) {
	compiled, err := s.Compile(conceptID)
	if err != nil {
		return nil, err
	}

	answered, err := s.answeredRepo.FindAnsweredIDs(conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answered questions: %w", err)
	}

	analysis := s.quality.Analyze(compiled)
	return s.questions.Prioritize(compiled, analysis, answered), nil
}

// AnswerQuestion 记录问题的回答
func (s *Service) AnswerQuestion(conceptID, questionID, answer string) error {
	if questionID == "" {
		return fmt.Errorf("question ID is required")
	}
	if err := s.answeredRepo.MarkAnswered(conceptID, questionID, answer); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	s.logger.Info("Question answered", "conceptID", conceptID, "questionID", questionID)
	return nil
}

// ResetAnswers 清空概念的问题回答记录
// 清空后此前被回答过的问题规则可以再次触发
func (s *Service) ResetAnswers(conceptID string) error {
	if err := s.answeredRepo.Clear(conceptID); err != nil {
		return fmt.Errorf("failed to clear answers: %w", err)
	}
	s.logger.Info("Answered questions cleared", "conceptID", conceptID)
	return nil
}

// Enhance 调用远端增强服务并按章节整体合并
// 合并是浅层的：返回的章节整体替换对应子对象，不做字段级合并
func (s *Service) Enhance(ctx context.Context, conceptID string, targetSections []string) (*domaindeliverable.CompiledDeliverable, error) {
	compiled, err := s.Compile(conceptID)
	if err != nil {
		return nil, err
	}

	answers, err := s.answeredRepo.FindAnswers(conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	questionAnswers := make([]domaindeliverable.QuestionAnswer, 0, len(answers))
	for _, a := range answers {
		questionAnswers = append(questionAnswers, domaindeliverable.QuestionAnswer{
			QuestionID: a.QuestionID,
			Answer:     a.Answer,
		})
	}

	resp, err := s.enhancer.Enhance(ctx, &llm.EnhanceRequest{
		ConceptID:       conceptID,
		Deliverable:     compiled,
		QuestionAnswers: questionAnswers,
		TargetSections:  targetSections,
	})
	if err != nil {
		metrics.EnhancementRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("enhancement failed: %w", err)
	}
	metrics.EnhancementRequests.WithLabelValues("success").Inc()

	if err := mergeSections(compiled, resp.Sections); err != nil {
		return nil, err
	}
	return compiled, nil
}

// mergeSections 把增强返回的章节整体替换进文档
// 未知章节名忽略
func mergeSections(d *domaindeliverable.CompiledDeliverable, sections map[string]json.RawMessage) error {
	for name, raw := range sections {
		var err error
		switch name {
		case "projectOverview":
			err = json.Unmarshal(raw, &d.ProjectOverview)
		case "marketAnalysis":
			err = json.Unmarshal(raw, &d.MarketAnalysis)
		case "technicalSpecification":
			err = json.Unmarshal(raw, &d.TechnicalSpecification)
		case "implementationPlan":
			err = json.Unmarshal(raw, &d.ImplementationPlan)
		case "validationResults":
			err = json.Unmarshal(raw, &d.ValidationResults)
		case "nextSteps":
			err = json.Unmarshal(raw, &d.NextSteps)
		}
		if err != nil {
			return fmt.Errorf("failed to merge section %s: %w", name, err)
		}
	}
	return nil
}

// loadInputs 加载编译输入
func (s *Service) loadInputs(conceptID string) (*concept.Concept, *session.DevelopmentData, error) {
	cpt, err := s.conceptRepo.FindByID(conceptID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load concept: %w", err)
	}
	if cpt == nil {
		return nil, nil, fmt.Errorf("concept not found: %s", conceptID)
	}

	sessions, err := s.sessionRepo.FindByConceptID(conceptID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	return cpt, &session.DevelopmentData{
		ConceptID: conceptID,
		Sessions:  sessions,
	}, nil
}
