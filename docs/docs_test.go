package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDoc(t *testing.T) {
	doc := SwaggerInfo.ReadDoc()

	var spec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &spec), "渲染后的文档应是合法 JSON")

	t.Run("基础信息", func(t *testing.T) {
		assert.Equal(t, "2.0", spec["swagger"])
		assert.Equal(t, "localhost:19870", spec["host"])
		assert.Equal(t, "/api/v1", spec["basePath"])
	})

	t.Run("路径非空且覆盖核心端点", func(t *testing.T) {
		paths, ok := spec["paths"].(map[string]interface{})
		require.True(t, ok)
		require.NotEmpty(t, paths, "生成的文档应包含实际路径")

		for _, route := range []string{
			"/concepts",
			"/concepts/{id}",
			"/concepts/{id}/devloop/start",
			"/concepts/{id}/analysis",
			"/concepts/{id}/deliverable",
			"/concepts/{id}/questions/answers",
			"/concepts/{id}/export",
			"/sessions/import",
			"/ws/concepts/{id}",
		} {
			assert.Contains(t, paths, route)
		}
	})

	t.Run("请求体定义存在", func(t *testing.T) {
		defs, ok := spec["definitions"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, defs, "handler.CreateConceptRequest")
		assert.Contains(t, defs, "handler.AnswerQuestionRequest")
		assert.Contains(t, defs, "response.Response")
		assert.Contains(t, defs, "response.ErrorResponse")
	})
}
