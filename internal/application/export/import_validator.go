package export

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/conceptlab/backend/internal/domain/session"
)

// sessionImportSchema 会话导入 JSON Schema
// 校验持久化形态（snake_case）的迭代记录
const sessionImportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["conceptId", "sessions"],
  "properties": {
    "conceptId": {"type": "string", "minLength": 1},
    "sessions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "status"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "status": {"type": "string", "enum": ["running", "stopped", "completed", "failed"]},
          "currentStage": {"type": "string"},
          "iteration": {"type": "integer", "minimum": 0},
          "iterations": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "stage": {"type": "string"},
                "iteration": {"type": "integer", "minimum": 0},
                "response": {"type": "string"},
                "timestamp": {"type": "integer"},
                "extracted_components": {"$ref": "#/definitions/items"},
                "extracted_research": {"$ref": "#/definitions/items"},
                "extracted_validations": {"$ref": "#/definitions/items"},
                "extracted_refinements": {"$ref": "#/definitions/items"},
                "scores": {"$ref": "#/definitions/scores"}
              }
            }
          },
          "latestScores": {"$ref": "#/definitions/scores"}
        }
      }
    }
  },
  "definitions": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "description": {"type": "string"},
          "content": {"type": "string"}
        }
      }
    },
    "scores": {
      "type": "object",
      "properties": {
        "completeness": {"type": "number", "minimum": 0, "maximum": 1},
        "clarity": {"type": "number", "minimum": 0, "maximum": 1},
        "actionability": {"type": "number", "minimum": 0, "maximum": 1},
        "marketReadiness": {"type": "number", "minimum": 0, "maximum": 1}
      }
    }
  }
}`

// SessionImport 会话导入载荷
type SessionImport struct {
	ConceptID string            `json:"conceptId"`
	Sessions  []ImportedSession `json:"sessions"`
}

// ImportedSession 导入的单个会话
type ImportedSession struct {
	ID           string                    `json:"id"`
	Status       session.Status            `json:"status"`
	CurrentStage string                    `json:"currentStage"`
	Iteration    int                       `json:"iteration"`
	Iterations   []session.IterationRecord `json:"iterations"`
	LatestScores *session.Scores           `json:"latestScores"`
}

// ImportValidator 会话导入校验器
// 先做 Schema 校验再反序列化，拒绝结构不合法的载荷
type ImportValidator struct {
	schema *gojsonschema.Schema
}

// NewImportValidator 创建导入校验器
// Schema 为编译期常量，加载失败属于程序缺陷
func NewImportValidator() (*ImportValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(sessionImportSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile session import schema: %w", err)
	}
	return &ImportValidator{schema: schema}, nil
}

// Validate 校验并解析导入载荷
// 返回的错误信息列表来自 Schema 校验，为空表示通过
func (v *ImportValidator) Validate(data []byte) (*SessionImport, []string, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, issues, nil
	}

	var imp SessionImport
	if err := json.Unmarshal(data, &imp); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal session import: %w", err)
	}
	return &imp, nil, nil
}
