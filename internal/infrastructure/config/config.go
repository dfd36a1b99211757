package config

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Engine    EngineConfig    `yaml:"engine"`
	Enhancer  EnhancerConfig  `yaml:"enhancer"`
	DevLoop   DevLoopConfig   `yaml:"devloop"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `yaml:"http_port"` // 固定端口，用于单例锁
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path string `yaml:"path"` // 留空表示使用默认数据目录
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`
}

// EngineConfig 远端分析引擎配置
// 引擎是一个黑盒 HTTP 服务，接收概念 ID 返回阶段评分
type EngineConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxRetries int    `yaml:"max_retries"`
}

// EnhancerConfig 可交付文档增强服务配置
type EnhancerConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// DevLoopConfig 开发循环配置
type DevLoopConfig struct {
	// IterationDelayMS 两次迭代之间的固定延迟（毫秒）
	IterationDelayMS int `yaml:"iteration_delay_ms"`
	// MaxIterations 单次循环的最大迭代次数
	MaxIterations int `yaml:"max_iterations"`
	// PollIntervalMS 分析任务轮询间隔（毫秒）
	PollIntervalMS int `yaml:"poll_interval_ms"`
}

// LogConfig 日志配置
// Level 留空表示由环境变量 LOG_LEVEL 决定；
// 非空时支持热更新，配置文件变更后立即生效
type LogConfig struct {
	Level string `yaml:"level"`
}

// NewConfig 创建配置（默认值 + 配置文件 + 环境变量覆盖）
func NewConfig() *Config {
	cfg := defaultConfig()

	// 配置文件存在时覆盖默认值
	if err := loadFromFile(cfg, ConfigFilePath()); err != nil {
		// 配置文件损坏不阻止启动，使用默认值
		logMissingConfig(err)
	}

	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig 内置默认配置
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: ":19870",
		},
		Database: DatabaseConfig{
			Path: "",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Engine: EngineConfig{
			BaseURL:    "",
			TimeoutSec: 60,
			MaxRetries: 3,
		},
		Enhancer: EnhancerConfig{
			BaseURL:    "",
			Model:      "",
			TimeoutSec: 120,
		},
		DevLoop: DevLoopConfig{
			IterationDelayMS: 2000,
			MaxIterations:    10,
			PollIntervalMS:   1500,
		},
	}
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewEngineConfig 创建分析引擎配置
func NewEngineConfig(cfg *Config) *EngineConfig {
	return &cfg.Engine
}

// NewEnhancerConfig 创建增强服务配置
func NewEnhancerConfig(cfg *Config) *EnhancerConfig {
	return &cfg.Enhancer
}

// NewDevLoopConfig 创建开发循环配置
func NewDevLoopConfig(cfg *Config) *DevLoopConfig {
	return &cfg.DevLoop
}
