package handler

import (
	"io"
	"net/http"

	appexport "github.com/conceptlab/backend/internal/application/export"
	"github.com/conceptlab/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// ExportHandler 导出/导入处理器
type ExportHandler struct {
	service *appexport.Service
}

// NewExportHandler 创建导出处理器
func NewExportHandler(service *appexport.Service) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export 导出可交付文档
// @Summary 以指定格式导出概念的可交付文档
// @Tags 导出
// @Accept json
// @Produce octet-stream
// @Param id path string true "概念ID"
// @Param format query string false "导出格式 markdown|json|pdf" default(markdown)
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorResponse
// @Router /concepts/{id}/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	conceptID := c.Param("id")
	if conceptID == "" {
		response.Error(c, http.StatusBadRequest, 100001, "缺少概念ID")
		return
	}

	format := appexport.Format(c.DefaultQuery("format", string(appexport.FormatMarkdown)))

	artifact, err := h.service.Export(conceptID, format)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 870001, "导出失败", err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+artifact.FileName+"\"")
	if artifact.Notice != "" {
		c.Header("X-Export-Notice", artifact.Notice)
	}
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// ImportSessions 导入会话数据
// @Summary 校验并导入会话数据
// @Tags 导出
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /sessions/import [post]
func (h *ExportHandler) ImportSessions(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil || len(data) == 0 {
		response.Error(c, http.StatusBadRequest, 100001, "缺少导入数据")
		return
	}

	count, issues, err := h.service.ImportSessions(data)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 880001, "导入失败", err.Error())
		return
	}
	if len(issues) > 0 {
		response.Success(c, gin.H{
			"imported": 0,
			"valid":    false,
			"issues":   issues,
		})
		return
	}

	response.Success(c, gin.H{
		"imported": count,
		"valid":    true,
	})
}
