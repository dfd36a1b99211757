package handler

import (
	"net/http"

	appconcept "github.com/conceptlab/backend/internal/application/concept"
	domainconcept "github.com/conceptlab/backend/internal/domain/concept"
	"github.com/conceptlab/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// ConceptHandler 概念处理器
type ConceptHandler struct {
	service *appconcept.Service
}

// NewConceptHandler 创建概念处理器
func NewConceptHandler(service *appconcept.Service) *ConceptHandler {
	return &ConceptHandler{service: service}
}

// ConceptDTO 概念 DTO
type ConceptDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category,omitempty"`
	Status       string `json:"status"`
	CurrentStage string `json:"currentStage"`
	CreatedAt    int64  `json:"createdAt"` // Unix 毫秒时间戳
	UpdatedAt    int64  `json:"updatedAt"` // Unix 毫秒时间戳
}

// CreateConceptRequest 创建概念请求
type CreateConceptRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateConceptRequest 更新概念请求
type UpdateConceptRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// toConceptDTO 将领域模型转换为 DTO
func toConceptDTO(cpt *domainconcept.Concept) *ConceptDTO {
	return &ConceptDTO{
		ID:           cpt.ID,
		Name:         cpt.Name,
		Description:  cpt.Description,
		Category:     cpt.Category,
		Status:       string(cpt.Status),
		CurrentStage: string(cpt.CurrentStage),
		CreatedAt:    cpt.CreatedAt.UnixMilli(),
		UpdatedAt:    cpt.UpdatedAt.UnixMilli(),
	}
}

// List 获取概念列表
// @Summary 获取概念列表
// @Tags 概念
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /concepts [get]
func (h *ConceptHandler) List(c *gin.Context) {
	concepts, err := h.service.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, 810001, "获取概念列表失败")
		return
	}

	dtos := make([]*ConceptDTO, 0, len(concepts))
	for _, cpt := range concepts {
		dtos = append(dtos, toConceptDTO(cpt))
	}

	response.Success(c, dtos)
}

// Create 创建概念
// @Summary 创建概念
// @Tags 概念
// @Accept json
// @Produce json
// @Param body body CreateConceptRequest true "概念信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /concepts [post]
func (h *ConceptHandler) Create(c *gin.Context) {
	var req CreateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	cpt, err := h.service.Create(req.Name, req.Description)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, 810002, "创建概念失败")
		return
	}

	response.Success(c, toConceptDTO(cpt))
}

// Get 获取概念详情
// @Summary 获取概念详情
// @Tags 概念
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /concepts/{id} [get]
func (h *ConceptHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	cpt, err := h.service.Get(id)
	if err != nil {
		response.Error(c, http.StatusNotFound, 810003, "概念不存在")
		return
	}

	response.Success(c, toConceptDTO(cpt))
}

// Update 更新概念
// @Summary 更新概念
// @Tags 概念
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Param body body UpdateConceptRequest true "更新内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /concepts/{id} [patch]
func (h *ConceptHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	var req UpdateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	cpt, err := h.service.Update(id, req.Name, req.Description, domainconcept.Status(req.Status))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, 810004, "更新概念失败")
		return
	}

	response.Success(c, toConceptDTO(cpt))
}

// AdvanceStage 推进概念分析阶段
// @Summary 推进概念分析阶段
// @Tags 概念
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /concepts/{id}/advance [post]
func (h *ConceptHandler) AdvanceStage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	cpt, err := h.service.AdvanceStage(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, 810005, "推进阶段失败")
		return
	}

	response.Success(c, toConceptDTO(cpt))
}

// Delete 删除概念
// @Summary 删除概念及其会话
// @Tags 概念
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /concepts/{id} [delete]
func (h *ConceptHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	if err := h.service.Delete(id); err != nil {
		response.Error(c, http.StatusInternalServerError, 810006, "删除概念失败")
		return
	}

	response.Success(c, nil)
}
