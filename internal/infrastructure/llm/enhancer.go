// Package llm 实现可交付文档增强服务的 HTTP 客户端
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/conceptlab/backend/internal/domain/deliverable"
	"github.com/conceptlab/backend/internal/infrastructure/config"
	"github.com/conceptlab/backend/internal/infrastructure/log"
)

// EnhancerClient 增强服务客户端接口
type EnhancerClient interface {
	// Enhance 请求远端服务增强可交付文档
	Enhance(ctx context.Context, req *EnhanceRequest) (*EnhanceResponse, error)
}

// EnhanceRequest 增强请求
type EnhanceRequest struct {
	ConceptID       string                          `json:"conceptId"`
	Deliverable     *deliverable.CompiledDeliverable `json:"deliverable"`
	QuestionAnswers []deliverable.QuestionAnswer     `json:"questionAnswers"`
	TargetSections  []string                         `json:"targetSections,omitempty"`
}

// EnhanceResponse 增强响应
// Sections 按章节名返回整块替换内容，合并时不做深度字段级别的合并
type EnhanceResponse struct {
	Sections      map[string]json.RawMessage `json:"sections"`
	QualityDeltas map[string]int             `json:"qualityDeltas,omitempty"`
	TokensUsed    int                        `json:"tokensUsed,omitempty"`
}

// HTTPEnhancerClient 基于 HTTP 的增强客户端实现
type HTTPEnhancerClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// 编译时检查
var _ EnhancerClient = (*HTTPEnhancerClient)(nil)

// NewEnhancerClient 创建增强服务客户端
func NewEnhancerClient(cfg *config.EnhancerConfig) EnhancerClient {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &HTTPEnhancerClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.NewModuleLogger("llm", "enhancer"),
	}
}

// Enhance 请求远端服务增强可交付文档
func (c *HTTPEnhancerClient) Enhance(ctx context.Context, enhanceReq *EnhanceRequest) (*EnhanceResponse, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("enhancer URL is not configured")
	}

	jsonData, err := json.Marshal(enhanceReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal enhance request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/enhance", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create enhance request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	if c.model != "" {
		req.Header.Set("X-Model", c.model)
	}

	payloadTokens := 0
	if estimator, estErr := GetTokenEstimator(); estErr == nil {
		payloadTokens = estimator.CountTokens(string(jsonData))
	}

	c.logger.Debug("Sending enhance request",
		"conceptID", enhanceReq.ConceptID,
		"answers", len(enhanceReq.QuestionAnswers),
		"targetSections", len(enhanceReq.TargetSections),
		"payloadTokens", payloadTokens,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enhancer request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("enhancer returned status %d: %s", resp.StatusCode, string(body))
	}

	var result EnhanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode enhancer response: %w", err)
	}

	c.logger.Info("Enhancement successful",
		"conceptID", enhanceReq.ConceptID,
		"sections", len(result.Sections),
		"tokens", result.TokensUsed,
	)

	return &result, nil
}
