package handler

import (
	"net/http"

	"github.com/conceptlab/backend/internal/application/devloop"
	"github.com/conceptlab/backend/internal/domain/analysis"
	"github.com/conceptlab/backend/internal/domain/session"
	"github.com/conceptlab/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// AnalysisHandler 分析任务处理器
type AnalysisHandler struct {
	jobService *devloop.JobService
}

// NewAnalysisHandler 创建分析任务处理器
func NewAnalysisHandler(jobService *devloop.JobService) *AnalysisHandler {
	return &AnalysisHandler{jobService: jobService}
}

// JobDTO 分析任务 DTO
type JobDTO struct {
	ID        string          `json:"id"`
	ConceptID string          `json:"conceptId"`
	Status    string          `json:"status"`
	Stage     string          `json:"stage,omitempty"`
	Progress  int             `json:"progress"`
	Scores    *session.Scores `json:"scores,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt int64           `json:"createdAt"` // Unix 毫秒时间戳
	UpdatedAt int64           `json:"updatedAt"` // Unix 毫秒时间戳
}

// toJobDTO 将领域模型转换为 DTO
func toJobDTO(job *analysis.Job) *JobDTO {
	return &JobDTO{
		ID:        job.ID,
		ConceptID: job.ConceptID,
		Status:    string(job.Status),
		Stage:     job.Stage,
		Progress:  job.Progress,
		Scores:    job.Scores,
		Error:     job.Error,
		CreatedAt: job.CreatedAt.UnixMilli(),
		UpdatedAt: job.UpdatedAt.UnixMilli(),
	}
}

// Start 启动分析任务
// @Summary 为概念启动四阶段分析任务
// @Tags 分析
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /concepts/{id}/analysis [post]
func (h *AnalysisHandler) Start(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	job, err := h.jobService.StartJob(c.Request.Context(), conceptID)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 840001, "启动分析任务失败", err.Error())
		return
	}

	response.Success(c, toJobDTO(job))
}

// Get 查询分析任务
// @Summary 查询分析任务状态
// @Tags 分析
// @Accept json
// @Produce json
// @Param jobId path string true "任务ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /analysis/{jobId} [get]
func (h *AnalysisHandler) Get(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少任务ID")
		return
	}

	job, err := h.jobService.GetJob(jobID)
	if err != nil {
		response.Error(c, http.StatusNotFound, 840002, "分析任务不存在")
		return
	}

	response.Success(c, toJobDTO(job))
}

// ListByConcept 查询概念下的分析任务
// @Summary 查询概念下的分析任务列表
// @Tags 分析
// @Accept json
// @Produce json
// @Param id path string true "概念ID"
// @Success 200 {object} response.Response
// @Router /concepts/{id}/analysis [get]
func (h *AnalysisHandler) ListByConcept(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	jobs, err := h.jobService.ListJobs(conceptID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, 840003, "获取分析任务列表失败")
		return
	}

	dtos := make([]*JobDTO, 0, len(jobs))
	for _, job := range jobs {
		dtos = append(dtos, toJobDTO(job))
	}

	response.Success(c, dtos)
}
