package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// 在包初始化时设置离线加载器
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TokenEstimator 使用 tiktoken 精确估算 Token 数量
// 用于在调用增强服务前估算载荷规模
type TokenEstimator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

// tokenEstimatorInstance 单例实例
var (
	tokenEstimatorInstance *TokenEstimator
	tokenEstimatorOnce     sync.Once
	tokenEstimatorErr      error
)

// GetTokenEstimator 获取 TokenEstimator 单例
// 使用单例模式避免重复加载编码文件
func GetTokenEstimator() (*TokenEstimator, error) {
	tokenEstimatorOnce.Do(func() {
		// 使用 cl100k_base 编码，与主流对话模型兼容
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			tokenEstimatorErr = err
			return
		}
		tokenEstimatorInstance = &TokenEstimator{
			encoding: enc,
		}
	})

	if tokenEstimatorErr != nil {
		return nil, tokenEstimatorErr
	}
	return tokenEstimatorInstance, nil
}

// CountTokens 计算文本的 Token 数量
func (e *TokenEstimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	tokens := e.encoding.Encode(text, nil, nil)
	return len(tokens)
}

// CountTokensBatch 批量计算多个文本的 Token 数量
func (e *TokenEstimator) CountTokensBatch(texts []string) int {
	total := 0
	for _, text := range texts {
		total += e.CountTokens(text)
	}
	return total
}
