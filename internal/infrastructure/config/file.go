package config

import (
	"fmt"
	"os"

	applog "github.com/conceptlab/backend/internal/infrastructure/log"
	"gopkg.in/yaml.v3"
)

// loadFromFile 从 yaml 配置文件加载配置，覆盖已有值
// 文件不存在不算错误
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// applyEnvOverrides 应用环境变量覆盖
// 远端服务凭据通常通过环境变量下发，避免落盘
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONCEPTLAB_HTTP_PORT"); v != "" {
		cfg.Server.HTTPPort = v
	}
	if v := os.Getenv("CONCEPTLAB_ENGINE_URL"); v != "" {
		cfg.Engine.BaseURL = v
	}
	if v := os.Getenv("CONCEPTLAB_ENGINE_API_KEY"); v != "" {
		cfg.Engine.APIKey = v
	}
	if v := os.Getenv("CONCEPTLAB_ENHANCER_URL"); v != "" {
		cfg.Enhancer.BaseURL = v
	}
	if v := os.Getenv("CONCEPTLAB_ENHANCER_API_KEY"); v != "" {
		cfg.Enhancer.APIKey = v
	}
}

// SaveToFile 将配置写回 yaml 文件
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// logMissingConfig 记录配置文件加载失败
func logMissingConfig(err error) {
	if err == nil {
		return
	}
	applog.NewModuleLogger("config", "file").Warn("Config file ignored",
		"error", err,
	)
}
