package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/conceptlab/backend/internal/infrastructure/config"
	_ "modernc.org/sqlite"
)

// GetDBPath 获取 conceptlab 数据库路径
// Windows: %USERPROFILE%\.conceptlab\conceptlab.db
// macOS/Linux: ~/.conceptlab/conceptlab.db
func GetDBPath() (string, error) {
	return filepath.Join(config.GetDataDir(), "conceptlab.db"), nil
}

// OpenDB 打开数据库连接
func OpenDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		p, err := GetDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get database path: %w", err)
		}
		dbPath = p
	}

	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ProvideDB wire 提供数据库连接
func ProvideDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	return OpenDB(cfg)
}
