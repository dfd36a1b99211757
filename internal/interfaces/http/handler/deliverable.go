package handler

import (
	"net/http"

	appdeliverable "github.com/conceptlab/backend/internal/application/deliverable"
	"github.com/conceptlab/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// DeliverableHandler 可交付文档处理器
type DeliverableHandler struct {
	service *appdeliverable.Service
}

// NewDeliverableHandler 创建可交付文档处理器
func NewDeliverableHandler(service *appdeliverable.Service) *DeliverableHandler {
	return &DeliverableHandler{service: service}
}

// AnswerQuestionRequest 回答问题请求
type AnswerQuestionRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// EnhanceRequest 增强请求
type EnhanceRequest struct {
	TargetSections []string `json:"targetSections"`
}

// Compile 编译可交付文档
// @Summary 编译概念的可交付文档
// @Tags 可交付文档
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /concepts/{id}/deliverable [get]
func (h *DeliverableHandler) Compile(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	compiled, err := h.service.Compile(conceptID)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 850001, "编译可交付文档失败", err.Error())
		return
	}

	response.Success(c, compiled)
}

// Gaps 缺口分析
// @Summary 对概念的可交付文档做缺口分析
// @Tags 可交付文档
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /concepts/{id}/deliverable/gaps [get]
func (h *DeliverableHandler) Gaps(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	result, err := h.service.AnalyzeGaps(conceptID)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 850002, "缺口分析失败", err.Error())
		return
	}

	response.Success(c, result)
}

// Questions 获取智能问题计划
// @Summary 生成概念的智能问题计划
// @Tags 可交付文档
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /concepts/{id}/questions [get]
func (h *DeliverableHandler) Questions(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	plan, err := h.service.Questions(conceptID)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 850003, "生成问题计划失败", err.Error())
		return
	}

	response.Success(c, plan)
}

// AnswerQuestion 记录问题回答
// @Summary 记录智能问题的回答
// @Tags 可交付文档
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Param body body AnswerQuestionRequest true "问题回答"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /concepts/{id}/questions/answer [post]
func (h *DeliverableHandler) AnswerQuestion(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	var req AnswerQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	if err := h.service.AnswerQuestion(conceptID, req.QuestionID, req.Answer); err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 850004, "记录回答失败", err.Error())
		return
	}

	response.Success(c, gin.H{"answered": req.QuestionID})
}

// ResetAnswers 清空问题回答记录
// @Summary 清空概念的问题回答记录
// @Tags 可交付文档
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /concepts/{id}/questions/answers [delete]
func (h *DeliverableHandler) ResetAnswers(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	if err := h.service.ResetAnswers(conceptID); err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 850006, "清空回答失败", err.Error())
		return
	}

	response.Success(c, gin.H{"cleared": conceptID})
}

// Enhance 增强可交付文档
// @Summary 调用远端服务增强可交付文档
// @Tags 可交付文档
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Param body body EnhanceRequest false "目标章节"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.ErrorResponse
// @Router /concepts/{id}/deliverable/enhance [post]
func (h *DeliverableHandler) Enhance(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	var req EnhanceRequest
	// 请求体可选
	_ = c.ShouldBindJSON(&req)

	enhanced, err := h.service.Enhance(c.Request.Context(), conceptID, req.TargetSections)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadGateway, 850005, "增强失败", err.Error())
		return
	}

	response.Success(c, enhanced)
}
