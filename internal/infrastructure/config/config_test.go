package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, ":19870", cfg.Server.HTTPPort)
	assert.Equal(t, 3, cfg.Engine.MaxRetries)
	assert.Equal(t, 60, cfg.Engine.TimeoutSec)
	assert.Equal(t, 2000, cfg.DevLoop.IterationDelayMS)
	assert.Equal(t, 10, cfg.DevLoop.MaxIterations)
	assert.Equal(t, 1500, cfg.DevLoop.PollIntervalMS)
}

func TestLoadFromFile(t *testing.T) {
	t.Run("文件不存在不报错", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromFile(cfg, filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, ":19870", cfg.Server.HTTPPort, "默认值应保留")
	})

	t.Run("配置文件覆盖默认值", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "server:\n  http_port: \":20000\"\nengine:\n  base_url: \"http://engine.local\"\n  max_retries: 5\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg := defaultConfig()
		require.NoError(t, loadFromFile(cfg, path))

		assert.Equal(t, ":20000", cfg.Server.HTTPPort)
		assert.Equal(t, "http://engine.local", cfg.Engine.BaseURL)
		assert.Equal(t, 5, cfg.Engine.MaxRetries)
		assert.Equal(t, 2000, cfg.DevLoop.IterationDelayMS, "未出现的字段保留默认值")
	})

	t.Run("损坏的yaml返回错误", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

		err := loadFromFile(defaultConfig(), path)
		assert.Error(t, err)
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CONCEPTLAB_HTTP_PORT", ":21000")
	t.Setenv("CONCEPTLAB_ENGINE_URL", "http://env-engine")
	t.Setenv("CONCEPTLAB_ENGINE_API_KEY", "env-key")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, ":21000", cfg.Server.HTTPPort)
	assert.Equal(t, "http://env-engine", cfg.Engine.BaseURL)
	assert.Equal(t, "env-key", cfg.Engine.APIKey)
	assert.Empty(t, cfg.Enhancer.BaseURL, "未设置的环境变量不应覆盖")
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := defaultConfig()
	original.Server.HTTPPort = ":22000"
	original.Engine.BaseURL = "http://round-trip"
	require.NoError(t, SaveToFile(original, path))

	loaded := defaultConfig()
	require.NoError(t, loadFromFile(loaded, path))
	assert.Equal(t, original.Server.HTTPPort, loaded.Server.HTTPPort)
	assert.Equal(t, original.Engine.BaseURL, loaded.Engine.BaseURL)
}

func TestGetDataDir(t *testing.T) {
	t.Run("环境变量优先", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(EnvDataDir, dir)
		ResetDataDir()
		defer ResetDataDir()

		assert.Equal(t, dir, GetDataDir())
		assert.Equal(t, filepath.Join(dir, "config.yaml"), ConfigFilePath())
	})

	t.Run("默认为用户主目录下的隐藏目录", func(t *testing.T) {
		t.Setenv(EnvDataDir, "")
		ResetDataDir()
		defer ResetDataDir()

		home, err := os.UserHomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, DefaultDataDirName), GetDataDir())
	})

	t.Run("结果被缓存", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(EnvDataDir, dir)
		ResetDataDir()
		defer ResetDataDir()

		first := GetDataDir()
		t.Setenv(EnvDataDir, "/elsewhere")
		assert.Equal(t, first, GetDataDir(), "首次解析后应缓存")
	})
}
