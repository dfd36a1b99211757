package handler

import (
	"net/http"

	appconcept "github.com/conceptlab/backend/internal/application/concept"
	"github.com/conceptlab/backend/internal/application/devloop"
	"github.com/conceptlab/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// DevLoopHandler 开发循环处理器
type DevLoopHandler struct {
	runner         *devloop.Runner
	sessionService *appconcept.SessionService
}

// NewDevLoopHandler 创建开发循环处理器
func NewDevLoopHandler(runner *devloop.Runner, sessionService *appconcept.SessionService) *DevLoopHandler {
	return &DevLoopHandler{
		runner:         runner,
		sessionService: sessionService,
	}
}

// DevLoopStatusDTO 开发循环状态 DTO
type DevLoopStatusDTO struct {
	Running       bool        `json:"running"`
	LatestSession *SessionDTO `json:"latestSession,omitempty"`
}

// Start 启动开发循环
// @Summary 启动概念的开发循环
// @Tags 开发循环
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.ErrorResponse
// @Router /concepts/{id}/devloop/start [post]
func (h *DevLoopHandler) Start(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	sess, err := h.runner.Start(c.Request.Context(), conceptID)
	if err != nil {
		if h.runner.IsRunning(conceptID) {
			response.Error(c, http.StatusConflict, 830001, "开发循环已在运行")
			return
		}
		response.ErrorWithDetail(c, http.StatusInternalServerError, 830002, "启动开发循环失败", err.Error())
		return
	}

	response.Success(c, toSessionDTO(sess, false))
}

// Stop 停止开发循环
// @Summary 停止概念的开发循环
// @Tags 开发循环
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /concepts/{id}/devloop/stop [post]
func (h *DevLoopHandler) Stop(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	if err := h.runner.Stop(conceptID); err != nil {
		response.Error(c, http.StatusNotFound, 830003, "没有运行中的开发循环")
		return
	}

	response.Success(c, gin.H{"stopping": true})
}

// Status 查询开发循环状态
// @Summary 查询概念的开发循环状态
// @Tags 开发循环
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Router /concepts/{id}/devloop/status [get]
func (h *DevLoopHandler) Status(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	dto := &DevLoopStatusDTO{
		Running: h.runner.IsRunning(conceptID),
	}

	sessions, err := h.sessionService.ListByConcept(conceptID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, 830004, "查询循环状态失败")
		return
	}
	if len(sessions) > 0 {
		dto.LatestSession = toSessionDTO(sessions[len(sessions)-1], false)
	}

	response.Success(c, dto)
}
