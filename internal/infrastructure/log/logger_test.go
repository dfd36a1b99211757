package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	Init(&Config{Level: "info", Format: "console"})
	logger := GetLogger()
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.False(t, IsDebugMode())

	t.Run("调整对已创建的logger立即生效", func(t *testing.T) {
		SetLevel("debug")
		assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
		assert.True(t, IsDebugMode())

		child := NewModuleLogger("test", "set_level")
		assert.True(t, child.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("空级别为空操作", func(t *testing.T) {
		SetLevel("debug")
		SetLevel("")
		assert.True(t, GetLogger().Enabled(ctx, slog.LevelDebug))
		assert.True(t, IsDebugMode())
	})

	t.Run("提升级别后低级别被过滤", func(t *testing.T) {
		SetLevel("warn")
		assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
		assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
		assert.False(t, IsDebugMode())
	})

	// 恢复默认，避免影响同包其他测试
	SetLevel("info")
}
