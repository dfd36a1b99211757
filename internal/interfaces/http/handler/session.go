package handler

import (
	"net/http"

	appconcept "github.com/conceptlab/backend/internal/application/concept"
	"github.com/conceptlab/backend/internal/domain/session"
	"github.com/conceptlab/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// SessionHandler 开发会话处理器
type SessionHandler struct {
	service *appconcept.SessionService
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(service *appconcept.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// SessionDTO 会话 DTO
type SessionDTO struct {
	ID           string                    `json:"id"`
	ConceptID    string                    `json:"conceptId"`
	Status       string                    `json:"status"`
	CurrentStage string                    `json:"currentStage"`
	Iteration    int                       `json:"iteration"`
	Interactions []session.Interaction     `json:"interactions,omitempty"`
	Iterations   []session.IterationRecord `json:"iterations,omitempty"`
	LatestScores *session.Scores           `json:"latestScores,omitempty"`
	CreatedAt    int64                     `json:"createdAt"` // Unix 毫秒时间戳
	UpdatedAt    int64                     `json:"updatedAt"` // Unix 毫秒时间戳
}

// toSessionDTO 将领域模型转换为 DTO
func toSessionDTO(s *session.DevelopmentSession, full bool) *SessionDTO {
	dto := &SessionDTO{
		ID:           s.ID,
		ConceptID:    s.ConceptID,
		Status:       string(s.Status),
		CurrentStage: s.CurrentStage,
		Iteration:    s.Iteration,
		LatestScores: s.LatestScores,
		CreatedAt:    s.CreatedAt.UnixMilli(),
		UpdatedAt:    s.UpdatedAt.UnixMilli(),
	}
	// 列表接口不携带完整交互记录，避免响应过大
	if full {
		dto.Interactions = s.Interactions
		dto.Iterations = s.Iterations
	}
	return dto
}

// ListByConcept 获取概念下的会话列表
// @Summary 获取概念下的会话列表
// @Tags 会话
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Router /concepts/{id}/sessions [get]
func (h *SessionHandler) ListByConcept(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	sessions, err := h.service.ListByConcept(conceptID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, 820001, "获取会话列表失败")
		return
	}

	dtos := make([]*SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		dtos = append(dtos, toSessionDTO(s, false))
	}

	response.Success(c, dtos)
}

// Get 获取会话详情
// @Summary 获取会话详情
// @Tags 会话
// @Accept json
// @Produce json
// @Param sessionId path string true "会话ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /sessions/{sessionId} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("sessionId")
	if id == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少会话ID")
		return
	}

	sess, err := h.service.Get(id)
	if err != nil {
		response.Error(c, http.StatusNotFound, 820002, "会话不存在")
		return
	}

	response.Success(c, toSessionDTO(sess, true))
}

// Delete 删除会话
// @Summary 删除会话
// @Tags 会话
// @Accept json
// @Produce json
// @Param sessionId path string true "会话ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /sessions/{sessionId} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("sessionId")
	if id == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少会话ID")
		return
	}

	if err := h.service.Delete(id); err != nil {
		response.Error(c, http.StatusInternalServerError, 820003, "删除会话失败")
		return
	}

	response.Success(c, nil)
}
