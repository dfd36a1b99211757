package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	applog "github.com/conceptlab/backend/internal/infrastructure/log"
	"github.com/fsnotify/fsnotify"
)

// ReloadFunc 配置重载回调
type ReloadFunc func(cfg *Config)

// Watcher 配置文件热更新监听器
// 监听数据目录下的 config.yaml，变更后防抖重载并通知订阅者
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onReload []ReloadFunc

	debounce   *time.Timer
	debounceMu sync.Mutex

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// debounceDelay 防抖延迟
const debounceDelay = 500 * time.Millisecond

// NewWatcher 创建配置监听器
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:    ConfigFilePath(),
		watcher: fw,
		logger:  applog.NewModuleLogger("config", "watcher"),
		stopCh:  make(chan struct{}),
	}, nil
}

// OnReload 注册重载回调
func (w *Watcher) OnReload(fn ReloadFunc) {
	w.onReload = append(w.onReload, fn)
}

// Start 启动监听
// 监听配置文件所在目录而不是文件本身，编辑器的原子替换会删除再创建文件
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.watchLoop()

	w.logger.Info("Config watcher started", "path", w.path)
	return nil
}

// Stop 停止监听
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.wg.Wait()

	w.debounceMu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounceMu.Unlock()
}

// watchLoop 事件处理循环
func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "error", err)
		}
	}
}

// scheduleReload 防抖后触发重载
func (w *Watcher) scheduleReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.reload)
}

// reload 重新加载配置并通知订阅者
func (w *Watcher) reload() {
	cfg := defaultConfig()
	if err := loadFromFile(cfg, w.path); err != nil {
		w.logger.Warn("Config reload failed, keeping previous config", "error", err)
		return
	}
	applyEnvOverrides(cfg)

	w.logger.Info("Config reloaded", "path", w.path)
	for _, fn := range w.onReload {
		fn(cfg)
	}
}
