package log

import (
	"context"
	"log/slog"
)

// 上下文键定义
const (
	// RequestContextID HTTP 请求 ID
	RequestContextID = "request_id"

	// ConceptContextID 概念 ID
	ConceptContextID = "concept_id"

	// SessionContextID 开发会话 ID
	SessionContextID = "session_id"

	// JobContextID 分析任务 ID
	JobContextID = "job_id"
)

// WithRequestID 在上下文中添加请求 ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestContextID, requestID)
}

// WithConceptID 在上下文中添加概念 ID
func WithConceptID(ctx context.Context, conceptID string) context.Context {
	return context.WithValue(ctx, ConceptContextID, conceptID)
}

// WithSessionID 在上下文中添加会话 ID
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionContextID, sessionID)
}

// WithJobID 在上下文中添加任务 ID
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, JobContextID, jobID)
}

// LogCtxFromContext 从上下文中提取日志字段
func LogCtxFromContext(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if requestID := ctx.Value(RequestContextID); requestID != nil {
		attrs = append(attrs, slog.String("request_id", requestID.(string)))
	}
	if conceptID := ctx.Value(ConceptContextID); conceptID != nil {
		attrs = append(attrs, slog.String("concept_id", conceptID.(string)))
	}
	if sessionID := ctx.Value(SessionContextID); sessionID != nil {
		attrs = append(attrs, slog.String("session_id", sessionID.(string)))
	}
	if jobID := ctx.Value(JobContextID); jobID != nil {
		attrs = append(attrs, slog.String("job_id", jobID.(string)))
	}

	return attrs
}
