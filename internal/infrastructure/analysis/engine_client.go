// Package analysis 实现远端分析引擎的 HTTP 客户端
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/conceptlab/backend/internal/domain/session"
	"github.com/conceptlab/backend/internal/infrastructure/config"
	"github.com/conceptlab/backend/internal/infrastructure/log"
)

// EngineClient 分析引擎客户端接口
// 引擎是黑盒 HTTP 服务：发起会话、推进迭代，返回阶段与评分
type EngineClient interface {
	// StartSession 为概念发起一次开发会话
	StartSession(ctx context.Context, conceptID string) (*IterationResult, error)

	// Iterate 在既有会话上推进一轮迭代
	Iterate(ctx context.Context, conceptID, sessionID string) (*IterationResult, error)
}

// IterationResult 引擎单轮迭代的返回
type IterationResult struct {
	SessionID string          `json:"sessionId,omitempty"`
	Stage     string          `json:"stage"`
	Iteration int             `json:"iteration"`
	Response  string          `json:"response,omitempty"`
	Scores    *session.Scores `json:"scores,omitempty"`
}

// iterateRequest 引擎请求体
type iterateRequest struct {
	ConceptID string `json:"conceptId"`
	SessionID string `json:"sessionId,omitempty"`
	Action    string `json:"action,omitempty"`
}

// HTTPEngineClient 基于 HTTP 的引擎客户端实现
type HTTPEngineClient struct {
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	logger     *slog.Logger
}

// 编译时检查
var _ EngineClient = (*HTTPEngineClient)(nil)

// NewEngineClient 创建分析引擎客户端
func NewEngineClient(cfg *config.EngineConfig) EngineClient {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HTTPEngineClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.NewModuleLogger("analysis", "engine_client"),
	}
}

// StartSession 为概念发起一次开发会话
func (c *HTTPEngineClient) StartSession(ctx context.Context, conceptID string) (*IterationResult, error) {
	return c.post(ctx, iterateRequest{ConceptID: conceptID})
}

// Iterate 在既有会话上推进一轮迭代
func (c *HTTPEngineClient) Iterate(ctx context.Context, conceptID, sessionID string) (*IterationResult, error) {
	return c.post(ctx, iterateRequest{
		ConceptID: conceptID,
		SessionID: sessionID,
		Action:    "iterate",
	})
}

// post 发送请求并带重试
// 网络错误与 5xx 重试，4xx 直接返回
func (c *HTTPEngineClient) post(ctx context.Context, reqBody iterateRequest) (*IterationResult, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("analysis engine URL is not configured")
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal engine request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/iterate", c.baseURL)
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, retryable, err := c.doOnce(ctx, url, jsonData)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable {
			return nil, err
		}
		if attempt < attempts {
			c.logger.Warn("Engine request failed, retrying",
				"conceptID", reqBody.ConceptID,
				"attempt", attempt,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
	}

	return nil, fmt.Errorf("engine request failed after %d attempts: %w", attempts, lastErr)
}

// doOnce 执行单次请求，返回是否可重试
func (c *HTTPEngineClient) doOnce(ctx context.Context, url string, jsonData []byte) (*IterationResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create engine request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("engine request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		// 4xx 属于请求本身的问题，重试无意义
		retryable := resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("engine returned status %d: %s", resp.StatusCode, string(body))
	}

	var result IterationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, false, fmt.Errorf("failed to decode engine response: %w", err)
	}
	return &result, false, nil
}
